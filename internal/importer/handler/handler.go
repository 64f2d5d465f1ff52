package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clearance/internal/importer/models"
	dErrors "clearance/pkg/domain-errors"
	"clearance/pkg/platform/httputil"
	"clearance/pkg/requestcontext"
)

// Service defines the identity store operations the handler needs.
type Service interface {
	Query(ctx context.Context, importerID string) (*models.Profile, error)
	Register(ctx context.Context, reg models.Registration) (*models.Profile, error)
	AddViolation(ctx context.Context, importerID string, v models.Violation) (*models.Profile, error)
	LogInspection(ctx context.Context, importerID string, i models.Inspection) (*models.Profile, error)
	AddCertificate(ctx context.Context, importerID string, c models.AEOCertificate) (*models.Profile, error)
}

// Handler wires importer endpoints to the identity store.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an importer handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts importer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/importer/{key}", h.HandleQuery)
	r.Post("/importer", h.HandleRegister)
	r.Post("/importer/{key}/violation", h.HandleAddViolation)
	r.Post("/importer/{key}/inspection", h.HandleLogInspection)
	r.Post("/importer/{key}/certificate", h.HandleAddCertificate)
}

// HandleQuery handles GET /importer/{key}.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	profile, err := h.service.Query(ctx, key)
	if err != nil {
		h.writeError(ctx, w, err, http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// HandleRegister handles POST /importer.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Register(ctx, req.Registration())
	if err != nil {
		h.writeError(ctx, w, err, http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// HandleAddViolation handles POST /importer/{key}/violation.
func (h *Handler) HandleAddViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ViolationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	_, err := h.service.AddViolation(ctx, chi.URLParam(r, "key"), req.Violation())
	h.writeMutation(ctx, w, err)
}

// HandleLogInspection handles POST /importer/{key}/inspection.
func (h *Handler) HandleLogInspection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[InspectionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	_, err := h.service.LogInspection(ctx, chi.URLParam(r, "key"), req.Inspection())
	h.writeMutation(ctx, w, err)
}

// HandleAddCertificate handles POST /importer/{key}/certificate.
func (h *Handler) HandleAddCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CertificateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	_, err := h.service.AddCertificate(ctx, chi.URLParam(r, "key"), req.Certificate())
	h.writeMutation(ctx, w, err)
}

// writeMutation answers history appends. A missing profile is a client error
// on these routes.
func (h *Handler) writeMutation(ctx context.Context, w http.ResponseWriter, err error) {
	if err != nil {
		h.writeError(ctx, w, err, http.StatusBadRequest)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// writeError renders importer errors as {"error": message}.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, notFoundStatus int) {
	de, ok := dErrors.As(err)
	if !ok {
		de = dErrors.Wrap(err, dErrors.CodeInternal, "internal error")
	}
	switch de.Code {
	case dErrors.CodeNotFound:
		httputil.WriteJSON(w, notFoundStatus, ErrorResponse{Error: "Importer not found"})
	case dErrors.CodeConflict:
		httputil.WriteJSON(w, http.StatusConflict, ErrorResponse{Error: "Importer already exists"})
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		httputil.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: de.Message})
	default:
		h.logger.ErrorContext(ctx, "importer request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
