package middleware

import (
	"context"
	"net/http"

	"github.com/tru-distribution/orderdesk-backend/pkg/enums"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

const actorRoleHeader = "X-Actor-Role"

type actorRoleKey struct{}

// ActorRole reads the acting role set by the auth layer in front of this
// service. An absent or unknown role stays empty and prices at retail with no
// discount.
func ActorRole(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role, err := enums.ParseRole(r.Header.Get(actorRoleHeader))
			if err == nil {
				ctx = context.WithValue(ctx, actorRoleKey{}, role)
				if logg != nil {
					ctx = logg.WithActorRole(ctx, role.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorRoleFromContext returns the acting role, empty when none was set.
func ActorRoleFromContext(ctx context.Context) enums.Role {
	if role, ok := ctx.Value(actorRoleKey{}).(enums.Role); ok {
		return role
	}
	return enums.Role("")
}
