package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nandakumarbm26/Products-RestAPI/internal/services"
	apperrors "github.com/nandakumarbm26/Products-RestAPI/pkg/errors"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/response"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100

	productNotFoundMessage = "There is no product with this id!"
)

// ProductHandler serves the product catalog endpoints.
type ProductHandler struct {
	catalog        *services.ProductCatalog
	defaultPerPage int
	maxPerPage     int
}

// ProductHandlerOption customises the ProductHandler.
type ProductHandlerOption func(*ProductHandler)

// WithPagination overrides the default and maximum page sizes.
func WithPagination(defaultSize, maxSize int) ProductHandlerOption {
	return func(h *ProductHandler) {
		if defaultSize > 0 {
			h.defaultPerPage = defaultSize
		}
		if maxSize > 0 {
			h.maxPerPage = maxSize
		}
	}
}

// NewProductHandler constructs a product handler backed by the catalog.
func NewProductHandler(catalog *services.ProductCatalog, opts ...ProductHandlerOption) (*ProductHandler, error) {
	if catalog == nil {
		return nil, errors.New("product handler: catalog is required")
	}
	h := &ProductHandler{
		catalog:        catalog,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.maxPerPage < h.defaultPerPage {
		h.maxPerPage = h.defaultPerPage
	}
	return h, nil
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var input services.CreateProductInput
	if !bindAndValidate(c, &input) {
		return
	}

	product, err := h.catalog.Create(catalogContext(c), input)
	if err != nil {
		response.Error(c, productError(err))
		return
	}

	response.JSON(c, http.StatusCreated, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	perPage, err := parsePositiveIntQuery(c, "perPage", h.defaultPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	if perPage > h.maxPerPage {
		response.Error(c, apperrors.NewBadRequest(fmt.Sprintf("perPage must not exceed %d", h.maxPerPage)))
		return
	}
	if page-1 > services.MaxListOffset/perPage {
		response.Error(c, apperrors.NewBadRequest(fmt.Sprintf("page must not exceed %d", services.MaxListOffset/perPage+1)))
		return
	}

	result, err := h.catalog.List(catalogContext(c), page, perPage)
	if err != nil {
		response.Error(c, productError(err))
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.catalog.Get(catalogContext(c), id)
	if err != nil {
		response.Error(c, productError(err))
		return
	}

	response.JSON(c, http.StatusOK, product)
}

// Filter handles GET /products/filter
func (h *ProductHandler) Filter(c *gin.Context) {
	priceMin, err := parseInt64Query(c, "price_min")
	if err != nil {
		response.Error(c, err)
		return
	}
	priceMax, err := parseInt64Query(c, "price_max")
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := services.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		PriceMin: priceMin,
		PriceMax: priceMax,
	}

	products, err := h.catalog.Filter(catalogContext(c), filter)
	if err != nil {
		response.Error(c, productError(err))
		return
	}

	response.JSON(c, http.StatusOK, products)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input services.UpdateProductInput
	if !bindAndValidate(c, &input) {
		return
	}

	product, err := h.catalog.Update(catalogContext(c), id, input)
	if err != nil {
		response.Error(c, productError(err))
		return
	}

	response.JSON(c, http.StatusOK, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.catalog.Delete(catalogContext(c), id); err != nil {
		response.Error(c, productError(err))
		return
	}

	response.NoContent(c)
}

// productError maps catalog errors onto API errors.
func productError(err error) error {
	var validationErr *services.ProductValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &validationErr):
		return apperrors.NewBadRequest(strings.Join(validationErr.Messages, "; "))
	case errors.Is(err, services.ErrProductNotFound):
		return apperrors.NewNotFound(productNotFoundMessage)
	case errors.Is(err, services.ErrInvalidProduct), errors.Is(err, services.ErrInvalidQuery):
		return apperrors.NewBadRequest(strings.TrimPrefix(err.Error(), "product service: "))
	case errors.Is(err, services.ErrCacheUnavailable):
		return apperrors.ErrCacheUnavailable.WithInternal(err)
	default:
		return apperrors.ErrInternalServer.WithInternal(err)
	}
}
