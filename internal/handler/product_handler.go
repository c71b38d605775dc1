package handler

import (
	"net/http"
	"strconv"

	"saniteetti/internal/catalog"
	"saniteetti/internal/model"
	"saniteetti/internal/service"

	"github.com/rs/zerolog"
)

// Listing page sizes.
const (
	defaultPageSize = 12
	maxPageSize     = 100
)

var errInvalidPaging = model.ErrValidation.WithMessage("Invalid page or pageSize parameter")

// ProductListResponse is one page of a product listing.
type ProductListResponse struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Pages    int             `json:"pages"`
}

// CategoryListResponse lists every category with its product count.
type CategoryListResponse struct {
	Categories []service.CategorySummary `json:"categories"`
}

// CategoryRequest is the admin payload for a new category.
type CategoryRequest struct {
	NameFi string `json:"nameFi"`
	NameEn string `json:"nameEn"`
}

// ProductHandler handles catalog browsing and administration requests.
type ProductHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.CatalogService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests with filtering and paging.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := positiveInt(q.Get("page"), 1)
	if err != nil {
		writeError(w, r, errInvalidPaging, h.logger)
		return
	}
	pageSize, err := positiveInt(q.Get("pageSize"), defaultPageSize)
	if err != nil || pageSize > maxPageSize {
		writeError(w, r, errInvalidPaging, h.logger)
		return
	}

	products := h.service.ListProducts(catalog.Filter{
		Query:    q.Get("query"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Lang:     q.Get("lang"),
	})

	total := len(products)
	pages := (total + pageSize - 1) / pageSize
	start, end := total, total
	if page <= pages {
		start = (page - 1) * pageSize
		end = min(start+pageSize, total)
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Products: append([]model.Product{}, products[start:end]...),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	})
}

// Get handles GET /api/products/{id} requests.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetProduct(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Categories handles GET /api/categories requests.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: h.service.Categories()})
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form model.ProductForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	form.ID = ""
	h.save(w, r, form, http.StatusCreated)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var form model.ProductForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	form.ID = r.PathValue("id")
	h.save(w, r, form, http.StatusOK)
}

func (h *ProductHandler) save(w http.ResponseWriter, r *http.Request, form model.ProductForm, status int) {
	product, err := h.service.SaveProduct(r.Context(), form)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, status, product)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// AddCategory handles POST /api/categories requests.
func (h *ProductHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, err := h.service.AddCategory(r.Context(), req.NameFi, req.NameEn)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/categories/{id} requests.
func (h *ProductHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
