package enums

import "fmt"

// Role is the customer tier that selects the price basis and discount
// schedule for an order.
type Role string

const (
	RoleCounterStaff    Role = "counter_staff"
	RoleDealer4         Role = "dealer_4"
	RoleDealer6         Role = "dealer_6"
	RoleDealerMarketing Role = "dealer_marketing"
	RoleAdmin           Role = "admin"
)

var validRoles = []Role{
	RoleCounterStaff,
	RoleDealer4,
	RoleDealer6,
	RoleDealerMarketing,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
