package storefront

import (
	"net/http"
	"strconv"

	"github.com/rosswilson/skylark/internal/domain"
	"github.com/rosswilson/skylark/internal/handler"
)

// OrdersHandler serves a customer's order history.
type OrdersHandler struct {
	orders   domain.OrderStore
	profiles domain.ProfileStore
}

func NewOrdersHandler(orders domain.OrderStore, profiles domain.ProfileStore) *OrdersHandler {
	return &OrdersHandler{orders: orders, profiles: profiles}
}

// List handles GET /orders. Orders are matched by user id and, for orders
// placed before the user registered, by the email on their profile.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid := userID(r)
	if uid == "" {
		handler.UnauthorizedResponse(w, r)
		return
	}

	email := ""
	if profile, err := h.profiles.GetByUserID(ctx, uid); err == nil {
		email = profile.Email
	}

	orders, err := h.orders.ListForCustomer(ctx, uid, email)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = newOrderView(&orders[i])
	}
	handler.JSON(w, http.StatusOK, map[string]any{"orders": views})
}

// Get handles GET /orders/{id}. Customers can only see their own orders.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid := userID(r)
	if uid == "" {
		handler.UnauthorizedResponse(w, r)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("orders.get", "invalid order id"))
		return
	}

	order, err := h.orders.GetByID(ctx, id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if order.UserID != uid {
		// Not found rather than forbidden: do not confirm the order exists.
		handler.NotFoundResponse(w, r)
		return
	}

	handler.JSON(w, http.StatusOK, newOrderView(order))
}
