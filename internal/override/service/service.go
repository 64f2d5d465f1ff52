// Package service implements the officer override log.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clearance/internal/override/feedback"
	"clearance/internal/override/metrics"
	"clearance/internal/override/models"
	"clearance/internal/risk"
	dErrors "clearance/pkg/domain-errors"
	"clearance/pkg/platform/sentinel"
	"clearance/pkg/requestcontext"
)

// Store persists override records. Append assigns a strictly increasing ID.
type Store interface {
	Append(ctx context.Context, record *models.Record) (*models.Record, error)
	ListByContainer(ctx context.Context, containerID string) ([]models.Record, error)
	Latest(ctx context.Context, containerID string) (*models.Record, error)
}

// Publisher emits training feedback for accepted overrides.
type Publisher interface {
	Publish(ctx context.Context, e feedback.Event) error
}

const defaultPublishTimeout = 2 * time.Second

// Service accepts, records and answers questions about lane overrides.
type Service struct {
	store          Store
	publisher      Publisher
	publishTimeout time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPublisher enables training feedback.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithPublishTimeout bounds each feedback publish.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// New creates an override service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		publisher:      feedback.Noop{},
		publishTimeout: defaultPublishTimeout,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit validates and records an override. A blank reason or an override to
// the lane the shipment is already in is a validation error and nothing is
// recorded.
func (s *Service) Submit(ctx context.Context, sub models.Submission) (*models.Record, error) {
	if err := sub.Validate(); err != nil {
		s.metrics.IncrementRejected()
		return nil, err
	}

	saved, err := s.store.Append(ctx, sub.Record(requestcontext.Now(ctx)))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record override")
	}
	s.metrics.IncrementOverride(string(saved.FromLane), string(saved.ToLane))
	s.logger.InfoContext(ctx, "lane override recorded",
		"override_id", saved.ID,
		"container_id", saved.ContainerID,
		"officer_id", saved.OfficerID,
		"from_lane", saved.FromLane,
		"to_lane", saved.ToLane,
		"request_id", requestcontext.RequestID(ctx),
	)

	s.publish(ctx, saved)
	return saved, nil
}

// publish sends training feedback for a recorded override. The record is
// already durable, so the publish runs under its own deadline and neither a
// slow queue nor a departed caller can hold up the response.
func (s *Service) publish(ctx context.Context, saved *models.Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, feedback.NewEvent(*saved)); err != nil {
		s.metrics.IncrementFeedbackFailure()
		s.logger.WarnContext(ctx, "override feedback not published",
			"override_id", saved.ID,
			"error", err,
		)
	}
}

// List returns the shipment's override history, oldest first.
func (s *Service) List(ctx context.Context, containerID string) ([]models.Record, error) {
	records, err := s.store.ListByContainer(ctx, containerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overrides")
	}
	return records, nil
}

// CurrentLane returns the lane of the most recent override, or original when
// the shipment was never overridden.
func (s *Service) CurrentLane(ctx context.Context, containerID string, original risk.Lane) (risk.Lane, error) {
	latest, err := s.store.Latest(ctx, containerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return original, nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve current lane")
	}
	return latest.ToLane, nil
}
