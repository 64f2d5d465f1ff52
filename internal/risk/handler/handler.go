package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clearance/internal/risk"
	"clearance/pkg/platform/httputil"
	"clearance/pkg/requestcontext"
)

// Service scores shipments.
type Service interface {
	Assess(ctx context.Context, req risk.ShipmentRequest) risk.Decision
}

// Handler serves the scoring endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a scoring handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/score", h.HandleScore)
}

// HandleScore handles POST /score.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[risk.ShipmentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.Assess(ctx, *req))
}
