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

// CartHandler handles all cart-related storefront routes.
type CartHandler struct {
	carts   domain.CartService
	cookies *cookie.Config
}

func NewCartHandler(carts domain.CartService, cookies *cookie.Config) *CartHandler {
	return &CartHandler{carts: carts, cookies: cookies}
}

// View handles GET /cart. Visitors without a cart get an empty one.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		handler.JSON(w, http.StatusOK, newCartView(&domain.Cart{}))
		return
	}

	cart, err := h.carts.Get(r.Context(), token)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartView(cart))
}

// Count handles GET /cart/count, the badge endpoint.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	count := 0
	if token := sessionToken(r); token != "" {
		cart, err := h.carts.Get(r.Context(), token)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		count = cart.ItemCount()
	}
	handler.JSON(w, http.StatusOK, map[string]int{"count": count})
}

// Add handles POST /cart/items.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "invalid form data"))
		return
	}

	productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "invalid product id"))
		return
	}
	quantity := int32(1)
	if q := r.FormValue("quantity"); q != "" {
		n, err := strconv.ParseInt(q, 10, 32)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("cart.add", "invalid quantity"))
			return
		}
		quantity = int32(n)
	}

	token := ensureSessionToken(w, r, h.cookies)
	cart, err := h.carts.AddItem(r.Context(), token, productID, quantity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			handler.ErrorResponse(w, r, domain.Invalid("cart.add", "quantity must be positive"))
			return
		}
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartView(cart))
}

// Update handles PUT /cart/items/{productID}. Quantity zero removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update", "invalid product id"))
		return
	}
	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update", "invalid form data"))
		return
	}
	quantity, err := strconv.ParseInt(r.FormValue("quantity"), 10, 32)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update", "invalid quantity"))
		return
	}

	token := sessionToken(r)
	if token == "" {
		handler.NotFoundResponse(w, r)
		return
	}

	cart, err := h.carts.SetQuantity(r.Context(), token, productID, int32(quantity))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartView(cart))
}

// Remove handles DELETE /cart/items/{productID}. Removing an absent line
// still succeeds.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.remove", "invalid product id"))
		return
	}

	token := sessionToken(r)
	if token == "" {
		handler.NotFoundResponse(w, r)
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), token, productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newCartView(cart))
}
