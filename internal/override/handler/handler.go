package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clearance/internal/override/models"
	"clearance/internal/risk"
	"clearance/pkg/platform/httputil"
	"clearance/pkg/requestcontext"
)

// Service defines the override operations the handler needs.
type Service interface {
	Submit(ctx context.Context, sub models.Submission) (*models.Record, error)
	List(ctx context.Context, containerID string) ([]models.Record, error)
}

// Handler serves officer override endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an override handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts override endpoints. When requireOfficer is non-nil it guards
// submissions and the authenticated officer replaces any officer_id in the body.
func (h *Handler) Register(r chi.Router, requireOfficer func(http.Handler) http.Handler) {
	submit := r
	if requireOfficer != nil {
		submit = r.With(requireOfficer)
	}
	submit.Post("/overrides", h.HandleSubmit)
	r.Get("/overrides/{container_id}", h.HandleList)
}

// HandleSubmit handles POST /overrides.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	sub := req.Submission()
	if officerID := requestcontext.OfficerID(ctx); officerID != "" {
		sub.OfficerID = officerID
	}

	record, err := h.service.Submit(ctx, sub)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleList handles GET /overrides/{container_id}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	containerID := chi.URLParam(r, "container_id")

	records, err := h.service.List(ctx, containerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{ContainerID: containerID, Overrides: records})
}

// SubmitRequest is the POST /overrides body.
type SubmitRequest struct {
	ContainerID string `json:"container_id"`
	OfficerID   string `json:"officer_id"`
	FromLane    string `json:"from_lane"`
	ToLane      string `json:"to_lane"`
	Reason      string `json:"reason"`
}

// Validate defers to the domain rules applied by the service.
func (r *SubmitRequest) Validate() error {
	return nil
}

func (r *SubmitRequest) Submission() models.Submission {
	return models.Submission{
		ContainerID: r.ContainerID,
		OfficerID:   r.OfficerID,
		FromLane:    risk.Lane(r.FromLane),
		ToLane:      risk.Lane(r.ToLane),
		Reason:      r.Reason,
	}
}

// ListResponse is the override history of one shipment.
type ListResponse struct {
	ContainerID string          `json:"container_id"`
	Overrides   []models.Record `json:"overrides"`
}
