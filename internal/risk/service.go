package risk

import (
	"context"
	"log/slog"

	"clearance/internal/importer/models"
	"clearance/internal/risk/metrics"
	dErrors "clearance/pkg/domain-errors"
	"clearance/pkg/requestcontext"
)

// IdentityResolver looks up an importer's current profile.
type IdentityResolver interface {
	Query(ctx context.Context, importerID string) (*models.Profile, error)
}

// Service resolves the importer's trust score and scores the shipment.
type Service struct {
	engine   *Engine
	identity IdentityResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds the scoring service. identity may be nil, in which case
// only an explicit trust score in the request is used.
func NewService(engine *Engine, identity IdentityResolver, opts ...ServiceOption) *Service {
	s := &Service{
		engine:   engine,
		identity: identity,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Assess scores req. An explicit trust score wins; otherwise the importer is
// resolved through the identity store, and an unknown importer scores with the
// neutral default.
func (s *Service) Assess(ctx context.Context, req ShipmentRequest) Decision {
	trust := s.resolveTrust(ctx, req)
	d := s.engine.Score(req, trust)

	s.metrics.ObserveDecision(string(d.Lane), d.ModelUsed, d.RiskScore)
	s.logger.InfoContext(ctx, "shipment scored",
		"container_id", req.ContainerID,
		"importer_id", req.ImporterID,
		"risk_score", d.RiskScore,
		"lane", d.Lane,
		"model_used", d.ModelUsed,
		"request_id", requestcontext.RequestID(ctx),
	)
	return d
}

func (s *Service) resolveTrust(ctx context.Context, req ShipmentRequest) *float64 {
	if req.TrustScore != nil {
		s.metrics.IncrementTrustSource("request")
		return req.TrustScore
	}
	if req.ImporterID == "" || s.identity == nil {
		s.metrics.IncrementTrustSource("default")
		return nil
	}
	profile, err := s.identity.Query(ctx, req.ImporterID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.logger.WarnContext(ctx, "trust resolution failed, scoring with neutral trust",
				"importer_id", req.ImporterID,
				"error", err,
			)
		}
		s.metrics.IncrementTrustSource("default")
		return nil
	}
	s.metrics.IncrementTrustSource("identity")
	trust := profile.TrustScore
	return &trust
}
