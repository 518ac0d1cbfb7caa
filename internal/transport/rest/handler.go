// Package rest provides HTTP handlers for the storefront catalog.
package rest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const DefaultMaxImageBytes = 5 << 20

type Handler struct {
	service       service.ProductService
	validate      *validator.Validate
	logger        *slog.Logger
	maxImageBytes int64
}

// NewHandler creates a new Handler. maxImageBytes caps uploaded image bodies;
// a non-positive value selects DefaultMaxImageBytes.
func NewHandler(service service.ProductService, logger *slog.Logger, maxImageBytes int64) *Handler {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Handler{
		service:       service,
		validate:      validator.New(),
		logger:        logger.With("component", "rest"),
		maxImageBytes: maxImageBytes,
	}
}

// RegisterRoutes registers the HTTP routes of the storefront.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.With(web.OptionalUser).Get("/search", h.Search)
			r.Get("/featured", h.Featured)
			r.Get("/recommended", h.Recommended)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindByID)
				r.Put("/", h.Update)
				r.Delete("/", h.Delete)
				r.Put("/image", h.UploadImage)
			})
		})

		r.Route("/recent-searches", func(r chi.Router) {
			r.Use(web.AuthMiddleware)
			r.Get("/", h.RecentSearches)
			r.Delete("/", h.ClearRecentSearches)
			r.Delete("/{term}", h.RemoveRecentSearch)
		})
	})

	r.Get("/images/*", h.Image)
	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// List returns a catalog page. Query: cursor, plus the filter parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	state := filter.ParseState(r.URL.Query())
	h.logger.DebugContext(r.Context(), "Received request to list products", "cursor", cursor != "", "filter", state)

	page, err := h.service.List(r.Context(), cursor, state)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, page)
}

// Search runs a product search. Query: q, plus the filter parameters.
// The term is recorded in the caller's recent searches when X-User-Id is present.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	owner, _ := web.UserID(r.Context())
	state := filter.ParseState(r.URL.Query())

	result, err := h.service.Search(r.Context(), owner, term, state)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to search products")
		return
	}
	if result.Partial {
		h.logger.WarnContext(r.Context(), "Serving partial search results", "failed_queries", result.FailedQueries)
	}
	web.RespondJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, ok := web.ParseOptionalInt(r, w, h.logger, "limit", service.DefaultShowcaseSize, web.Between(1, 100))
	if !ok {
		return
	}
	list, err := h.service.Featured(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch featured products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) Recommended(w http.ResponseWriter, r *http.Request) {
	limit, ok := web.ParseOptionalInt(r, w, h.logger, "limit", service.DefaultShowcaseSize, web.Between(1, 100))
	if !ok {
		return
	}
	list, err := h.service.Recommended(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch recommended products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto service.ProductCreateDto
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &dto) {
		return
	}
	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dto service.ProductUpdateDto
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &dto) {
		return
	}
	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores the raw request body as the product image.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		web.RespondError(w, h.logger, http.StatusBadRequest, "Content-Type header is required")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxImageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			web.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, "Image too large")
			return
		}
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(data) == 0 {
		web.RespondError(w, h.logger, http.StatusBadRequest, "Image body is empty")
		return
	}

	updated, err := h.service.UploadImage(r.Context(), id, contentType, data)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to upload image for product with ID %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product image uploaded", "ID", id, "bytes", len(data))
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Image serves a stored image by key.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	img, err := h.service.GetImage(r.Context(), key)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch image")
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (h *Handler) RecentSearches(w http.ResponseWriter, r *http.Request) {
	owner, _ := web.UserID(r.Context())
	terms, err := h.service.RecentSearches(r.Context(), owner)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch recent searches")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, terms)
}

func (h *Handler) RemoveRecentSearch(w http.ResponseWriter, r *http.Request) {
	owner, _ := web.UserID(r.Context())
	if err := h.service.RemoveRecentSearch(r.Context(), owner, chi.URLParam(r, "term")); err != nil {
		h.respondServiceError(w, r, err, "Failed to remove recent search")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	owner, _ := web.UserID(r.Context())
	if err := h.service.ClearRecentSearches(r.Context(), owner); err != nil {
		h.respondServiceError(w, r, err, "Failed to clear recent searches")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps service errors to HTTP status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(ctx, "Product not found", "path", r.URL.Path)
		web.RespondError(w, h.logger, http.StatusNotFound, "Product not found")
	case errors.Is(err, perrors.ErrImageNotFound):
		web.RespondError(w, h.logger, http.StatusNotFound, "Image not found")
	case errors.Is(err, perrors.ErrProductExists):
		web.RespondError(w, h.logger, http.StatusConflict, "Product already exists")
	case errors.Is(err, perrors.ErrInvalidCursor):
		h.logger.WarnContext(ctx, "Invalid cursor", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid cursor")
	case errors.Is(err, perrors.ErrSearchUnavailable):
		h.logger.ErrorContext(ctx, "Search unavailable", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Search is temporarily unavailable")
	default:
		h.logger.ErrorContext(ctx, fallback, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
	}
}
