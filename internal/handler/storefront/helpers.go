package storefront

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rosswilson/skylark/internal/cookie"
	"github.com/rosswilson/skylark/internal/domain"
)

// sessionToken returns the cart session token from the request cookie, or
// empty string if the visitor has no cart yet.
func sessionToken(r *http.Request) string {
	return cookie.Get(r, cookie.CartCookieName)
}

// ensureSessionToken returns the existing cart session token or mints a new
// one and sets the cookie. Tokens are opaque; the cart store keys on them.
func ensureSessionToken(w http.ResponseWriter, r *http.Request, cookies *cookie.Config) string {
	if token := sessionToken(r); token != "" {
		return token
	}
	token := uuid.NewString()
	cookies.Set(w, cookie.CartCookieName, token, 7*24*60*60)
	return token
}

// userID returns the authenticated user id, or empty string for guests.
// Authentication itself happens upstream; this service only consumes the
// identity.
func userID(r *http.Request) string {
	return cookie.Get(r, cookie.UserCookieName)
}

// cartView is the JSON shape returned by all cart endpoints.
type cartView struct {
	Items      []cartLineView `json:"items"`
	TotalCents int64          `json:"total_cents"`
	ItemCount  int            `json:"item_count"`
}

type cartLineView struct {
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	ImageURL       string `json:"image_url"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int32  `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

func newCartView(cart *domain.Cart) cartView {
	view := cartView{
		Items:      make([]cartLineView, len(cart.Items)),
		TotalCents: cart.TotalCents(),
		ItemCount:  cart.ItemCount(),
	}
	for i, item := range cart.Items {
		view.Items[i] = cartLineView{
			ProductID:      item.ProductID,
			Title:          item.Title,
			ImageURL:       item.ImageURL,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			SubtotalCents:  item.LineSubtotal(),
		}
	}
	return view
}

// orderView is the JSON shape returned by order and checkout endpoints.
type orderView struct {
	ID              int64           `json:"id"`
	SessionID       string          `json:"session_id"`
	Status          string          `json:"status"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerName    string          `json:"customer_name"`
	PhoneNumber     string          `json:"phone_number,omitempty"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	TotalCents      int64           `json:"total_cents"`
	CreatedAt       string          `json:"created_at"`
	Items           []orderItemView `json:"items"`
}

type orderItemView struct {
	ProductID      int64  `json:"product_id"`
	ProductTitle   string `json:"product_title"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

func newOrderView(order *domain.Order) orderView {
	view := orderView{
		ID:              order.ID,
		SessionID:       order.SessionID,
		Status:          string(order.Status),
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		PhoneNumber:     order.PhoneNumber,
		ShippingAddress: order.ShippingAddress,
		TotalCents:      order.TotalCents,
		CreatedAt:       order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Items:           make([]orderItemView, len(order.Items)),
	}
	for i, item := range order.Items {
		view.Items[i] = orderItemView{
			ProductID:      item.ProductID,
			ProductTitle:   item.ProductTitle,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}
	return view
}
