// Package cookie centralizes cookie handling for the storefront.
package cookie

import (
	"net/http"
)

// Common cookie names used throughout the application.
const (
	// CartCookieName carries the anonymous session token that keys the
	// visitor's cart.
	CartCookieName = "skylark_cart"

	// UserCookieName carries the authenticated user id, set by the auth
	// layer upstream of this service.
	UserCookieName = "skylark_user"
)

// Config holds shared cookie settings.
type Config struct {
	// Secure requires HTTPS for cookie transmission. True in production.
	Secure bool
}

func NewConfig(secure bool) *Config {
	return &Config{Secure: secure}
}

// Set writes a HttpOnly, SameSite=Lax cookie. Lax matters here: the payment
// gateway redirects the browser back to /checkout/success, and a stricter
// mode would drop the cart cookie on that cross-site navigation.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes a cookie.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the cookie value, or empty string if absent.
func Get(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
