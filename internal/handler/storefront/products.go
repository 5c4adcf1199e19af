package storefront

import (
	"net/http"
	"strconv"

	"github.com/rosswilson/skylark/internal/domain"
	"github.com/rosswilson/skylark/internal/handler"
)

// ProductsHandler serves the purchasable catalog.
type ProductsHandler struct {
	catalog domain.ProductCatalog
}

func NewProductsHandler(catalog domain.ProductCatalog) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

type productView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	PriceCents int64  `json:"price_cents"`
	Kind       string `json:"kind"`
}

func newProductView(p domain.Product) productView {
	return productView{
		ID:         p.ID,
		Title:      p.Title,
		ImageURL:   p.ImageURL,
		PriceCents: p.PriceCents,
		Kind:       string(p.Kind),
	}
}

// List handles GET /products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListPurchasable(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = newProductView(p)
	}
	handler.JSON(w, http.StatusOK, map[string]any{"products": views})
}

// Get handles GET /products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("products.get", "invalid product id"))
		return
	}

	product, err := h.catalog.GetPurchasableProduct(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, newProductView(*product))
}
