package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tru-distribution/orderdesk-backend/api/middleware"
	"github.com/tru-distribution/orderdesk-backend/api/responses"
	"github.com/tru-distribution/orderdesk-backend/api/validators"
	"github.com/tru-distribution/orderdesk-backend/internal/orders"
	"github.com/tru-distribution/orderdesk-backend/internal/pricing"
	"github.com/tru-distribution/orderdesk-backend/pkg/db/models"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

type OrderItemBody struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderBody struct {
	UserID uuid.UUID       `json:"userId" validate:"required"`
	Items  []OrderItemBody `json:"items" validate:"required,min=1,dive"`
}

type EditOrderBody struct {
	Items []OrderItemBody `json:"items" validate:"required,dive"`
}

type OrderItemResponse struct {
	ProductID       uuid.UUID       `json:"productId"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent int             `json:"discountPercent"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"userId"`
	OrderNumber     *string             `json:"orderNumber,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountPercent int                 `json:"discountPercent"`
	Total           decimal.Decimal     `json:"total"`
}

// CreateOrder creates an order priced for the acting role.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateOrderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			UserID: body.UserID,
			Role:   middleware.ActorRoleFromContext(r.Context()),
			Items:  toItemInputs(body.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderResponse(order))
	}
}

// EditOrderItems replaces the order's line set and re-resolves its discount.
func EditOrderItems(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body EditOrderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Edit(r.Context(), orders.EditInput{
			OrderID: orderID,
			Role:    middleware.ActorRoleFromContext(r.Context()),
			Items:   toItemInputs(body.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

// OrderDetail returns an order with its priced lines and totals.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

func toItemInputs(items []OrderItemBody) []orders.ItemInput {
	out := make([]orders.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, orders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

func toOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		OrderNumber: order.OrderNumber,
		Items:       make([]OrderItemResponse, 0, len(order.Items)),
		Subtotal:    decimal.Zero,
	}

	for _, item := range order.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		resp.Subtotal = resp.Subtotal.Add(lineTotal)
		resp.DiscountPercent = item.DiscountPercent
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			LineTotal:       pricing.OrderTotal(lineTotal, item.DiscountPercent),
		})
	}

	resp.Total = pricing.OrderTotal(resp.Subtotal, resp.DiscountPercent)
	return resp
}
