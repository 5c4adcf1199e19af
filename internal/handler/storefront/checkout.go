package storefront

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rosswilson/skylark/internal/cookie"
	"github.com/rosswilson/skylark/internal/domain"
	"github.com/rosswilson/skylark/internal/handler"
	"github.com/rosswilson/skylark/internal/service"
)

// CheckoutHandler handles the checkout flow: form prefill, session
// creation, and the browser's return from the payment gateway.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	orders   domain.OrderStore
	cookies  *cookie.Config
}

func NewCheckoutHandler(checkout domain.CheckoutService, orders domain.OrderStore, cookies *cookie.Config) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, orders: orders, cookies: cookies}
}

// Prefill handles GET /checkout. Returns the checkout form values prefilled
// from the user's stored shipping profile.
func (h *CheckoutHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	info, err := h.checkout.Prefill(r.Context(), userID(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]string{
		"customer_name":  info.CustomerName,
		"email":          info.Email,
		"phone_number":   info.PhoneNumber,
		"street_address": info.StreetAddress,
		"street_number":  info.StreetNumber,
		"city":           info.City,
		"province":       info.Province,
		"country":        info.Country,
	})
}

// CreateSession handles POST /checkout/session. On success the client is
// told where to send the browser: the gateway's hosted payment page, or the
// local success page in mock mode.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("checkout.create_session", "invalid form data"))
		return
	}

	info := domain.CustomerInfo{
		CustomerName:  r.FormValue("customer_name"),
		Email:         r.FormValue("email"),
		PhoneNumber:   r.FormValue("phone_number"),
		StreetAddress: r.FormValue("street_address"),
		StreetNumber:  r.FormValue("street_number"),
		City:          r.FormValue("city"),
		Province:      r.FormValue("province"),
		Country:       r.FormValue("country"),
	}

	token := sessionToken(r)
	if token == "" {
		handler.ErrorResponse(w, r, service.ErrEmptyCart)
		return
	}

	redirect, err := h.checkout.CreateSession(r.Context(), token, userID(r), info)
	if err != nil {
		if domain.IsValidationError(err) {
			handler.ValidationErrorResponse(w, r, err)
			return
		}
		if errors.Is(err, service.ErrEmptyCart) {
			handler.ErrorResponse(w, r, domain.Invalid("checkout.create_session", "cart is empty"))
			return
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]any{
		"session_id": redirect.SessionID,
		"url":        redirect.URL,
	})
}

// Success handles GET /checkout/success, the gateway's return redirect.
// Real sessions arrive with ?session_id= and are reconciled against the
// gateway; mock checkouts arrive with ?mock_order_id= and just load the
// already-paid order.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if mockID := r.URL.Query().Get("mock_order_id"); mockID != "" {
		id, err := strconv.ParseInt(mockID, 10, 64)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("checkout.success", "invalid order id"))
			return
		}
		order, err := h.orders.GetByID(ctx, id)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		handler.JSON(w, http.StatusOK, newOrderView(order))
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		handler.ErrorResponse(w, r, domain.Invalid("checkout.success", "missing session id"))
		return
	}

	order, err := h.checkout.Reconcile(ctx, sessionToken(r), userID(r), sessionID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, newOrderView(order))
}

// Cancel handles GET /checkout/cancel. The cart is untouched so the shopper
// can retry.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	handler.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
