// Package rest exposes the checklist controller as a JSON API.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/checklist/internal/controller"
	checklisterrors "github.com/abgdnv/checklist/internal/errors"
	"github.com/abgdnv/checklist/internal/model"
	"github.com/abgdnv/checklist/internal/notice"
	"github.com/abgdnv/checklist/internal/view"
	"github.com/abgdnv/checklist/pkg/logger"
	"github.com/abgdnv/checklist/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Checklist is the part of the controller the handler drives.
type Checklist interface {
	Load(ctx context.Context) error
	Model() view.Model
	Products() []model.Product
	BrandOptions() []view.BrandOption
	SetBrand(brand string)
	Unticked() []model.Product
	Form() view.Form
	BeginCreate() view.Form
	BeginEdit(id string) (view.Form, error)
	CancelEdit()
	Submit(ctx context.Context, in controller.FormInput) (*model.Product, error)
	Toggle(ctx context.Context, id string, checked bool) (controller.ToggleResult, error)
	Delete(ctx context.Context, id string, confirm controller.Confirmer) (bool, error)
	ClearAll(ctx context.Context, confirm controller.Confirmer) (controller.ClearReport, error)
	Copy(ctx context.Context) (string, error)
}

// NoticeSource hands out pending user notices.
type NoticeSource interface {
	Drain() []notice.Notice
}

type Handler struct {
	checklist Checklist
	notices   NoticeSource
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates a new Handler for the checklist.
func NewHandler(checklist Checklist, notices NoticeSource, logger *slog.Logger) *Handler {
	return &Handler{
		checklist: checklist,
		notices:   notices,
		validate:  validator.New(),
		logger:    logger.With("component", "rest"),
	}
}

type filterRequest struct {
	Brand string `json:"brand"`
}

type openFormRequest struct {
	ID string `json:"id"`
}

type checkedRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type untickedResponse struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

type copyResponse struct {
	Text string `json:"text"`
}

// RegisterRoutes registers the HTTP routes of the checklist.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/view", h.View)
		r.Post("/reload", h.Reload)
		r.Get("/brands", h.Brands)
		r.Put("/filter", h.SetFilter)

		r.Route("/form", func(r chi.Router) {
			r.Get("/", h.GetForm)
			r.Post("/", h.OpenForm)
			r.Delete("/", h.CancelForm)
			r.Post("/submit", h.SubmitForm)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products)
			r.Post("/clear", h.ClearAll)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", h.Delete)
				r.Put("/checked", h.Toggle)
			})
		})

		r.Get("/unticked", h.Unticked)
		r.Post("/unticked/copy", h.Copy)
		r.Get("/notices", h.Notices)
	})

	r.Get("/healthz", h.HealthCheck)
}

// View returns the whole view model.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.Model())
}

// Reload fetches the product list again.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to reload products")
	if err := h.checklist.Load(r.Context()); err != nil {
		h.respondFailure(w, r, err, "Failed to load products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.Model())
}

// Products returns the products of the current filter.
func (h *Handler) Products(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.Products())
}

// Brands returns the brand filter options.
func (h *Handler) Brands(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.BrandOptions())
}

// SetFilter changes the brand filter. An empty brand selects all products.
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !web.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to change filter", "brand", req.Brand)
	h.checklist.SetBrand(req.Brand)
	web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.Model())
}

func (h *Handler) GetForm(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.Form())
}

// OpenForm opens the form for a new product, or for editing when the body names a product id.
func (h *Handler) OpenForm(w http.ResponseWriter, r *http.Request) {
	var req openFormRequest
	if r.ContentLength != 0 && !web.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if req.ID == "" {
		web.RespondJSON(w, h.logger, http.StatusOK, h.checklist.BeginCreate())
		return
	}
	form, err := h.checklist.BeginEdit(req.ID)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to open product for editing")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, form)
}

func (h *Handler) CancelForm(w http.ResponseWriter, _ *http.Request) {
	h.checklist.CancelEdit()
	w.WriteHeader(http.StatusNoContent)
}

// SubmitForm creates or updates a product from the form input.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var input controller.FormInput
	if !web.DecodeJSON(w, r, h.logger, &input) {
		return
	}
	editing := h.checklist.Form().Editing()
	saved, err := h.checklist.Submit(r.Context(), input)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to save product")
		return
	}
	status := http.StatusCreated
	if editing {
		status = http.StatusOK
	}
	h.logger.InfoContext(r.Context(), "Product saved", "ID", saved.ID, "Name", saved.Name)
	web.RespondJSON(w, h.logger, status, saved)
}

// Toggle sets the checked flag of a product. Failures still carry the checkbox state to show.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	r = r.WithContext(logger.WithProductID(r.Context(), id))
	var req checkedRequest
	if !web.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if !h.validRequest(w, r, req) {
		return
	}

	result, err := h.checklist.Toggle(r.Context(), id, *req.Checked)
	if err != nil {
		status, message := statusFor(err, "Failed to update product status")
		h.logFailure(r, status, message, err, "ID", id)
		web.RespondJSON(w, h.logger, status, map[string]any{"error": message, "result": result})
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, result)
}

// Delete removes a product. Without confirm=true nothing is deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	r = r.WithContext(logger.WithProductID(r.Context(), id))
	confirmed, ok := web.ParseBool(r, w, h.logger, "confirm", false)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id, "confirmed", confirmed)
	deleted, err := h.checklist.Delete(r.Context(), id, controller.Answer(confirmed))
	if err != nil {
		h.respondFailure(w, r, err, "Failed to delete product", "ID", id)
		return
	}
	if deleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, deleteResponse{Deleted: false})
}

// ClearAll unchecks every product of the current filter. Partial failures answer 502 with the report.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	confirmed, ok := web.ParseBool(r, w, h.logger, "confirm", false)
	if !ok {
		return
	}
	report, err := h.checklist.ClearAll(r.Context(), controller.Answer(confirmed))
	if err != nil {
		status, message := statusFor(err, "Failed to clear all checkboxes")
		h.logFailure(r, status, message, err, "failed", report.Failed)
		web.RespondJSON(w, h.logger, status, map[string]any{"error": message, "report": report})
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, report)
}

// Unticked returns the unchecked products of the current filter as lines and as copyable text.
func (h *Handler) Unticked(w http.ResponseWriter, _ *http.Request) {
	unticked := h.checklist.Unticked()
	web.RespondJSON(w, h.logger, http.StatusOK, untickedResponse{
		Lines: view.UntickedLines(unticked),
		Text:  view.UntickedText(unticked),
	})
}

// Copy puts the unticked text on the clipboard of the host running the service.
func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	text, err := h.checklist.Copy(r.Context())
	if err != nil {
		h.respondFailure(w, r, err, "Failed to copy list")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, copyResponse{Text: text})
}

// Notices returns and clears pending user notices.
func (h *Handler) Notices(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.notices.Drain())
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validRequest validates req and answers 400 with the failed rules.
func (h *Handler) validRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
	return false
}

// respondFailure writes the status matching err. Validation errors list the failed rules per field.
func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, err error, fallback string, args ...any) {
	var validationErr *checklisterrors.ValidationError
	if errors.As(err, &validationErr) {
		errorResponse := make(map[string]string, len(validationErr.Fields))
		for field, tag := range validationErr.Fields {
			errorResponse[field] = "failed on rule: " + tag
		}
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return
	}
	status, message := statusFor(err, fallback)
	h.logFailure(r, status, message, err, args...)
	web.RespondError(w, h.logger, status, message)
}

func (h *Handler) logFailure(r *http.Request, status int, message string, err error, args ...any) {
	args = append(args, "status", status, "error", err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), message, args...)
		return
	}
	h.logger.WarnContext(r.Context(), message, args...)
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, checklisterrors.ErrBulkClear):
		return http.StatusBadGateway, fallback
	case errors.Is(err, checklisterrors.ErrValidation):
		return http.StatusBadRequest, "Please fill in all fields"
	case errors.Is(err, checklisterrors.ErrUnknownProduct), errors.Is(err, checklisterrors.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, checklisterrors.ErrToggleInFlight):
		return http.StatusConflict, "A status update for this product is still pending"
	case errors.Is(err, checklisterrors.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "Remote store is temporarily unavailable"
	case errors.Is(err, checklisterrors.ErrTransport):
		return http.StatusBadGateway, fallback
	default:
		return http.StatusInternalServerError, fallback
	}
}
