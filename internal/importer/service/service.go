// Package service implements the tiered importer identity store.
//
// Reads resolve cache, then ledger, then local; the first hit wins. Writes
// fan out best-effort to the ledger and cache, and only the local tier must
// succeed. Tier failures are logged as degradation events and never reach the
// caller.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"clearance/internal/importer/metrics"
	"clearance/internal/importer/models"
	dErrors "clearance/pkg/domain-errors"
	"clearance/pkg/platform/circuit"
	"clearance/pkg/platform/sentinel"
	"clearance/pkg/requestcontext"
)

// Cache is the fast, TTL-bound tier.
type Cache interface {
	Get(ctx context.Context, importerID string) (*models.Profile, error)
	Set(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, importerID string) error
}

// Ledger is the authoritative, possibly unreachable tier.
type Ledger interface {
	Query(ctx context.Context, importerID string) (*models.Profile, error)
	Register(ctx context.Context, profile *models.Profile) error
	AddViolation(ctx context.Context, importerID string, v models.Violation) error
	LogInspection(ctx context.Context, importerID string, i models.Inspection) error
	AddCertificate(ctx context.Context, importerID string, c models.AEOCertificate) error
}

// configurable is implemented by ledgers that can be deliberately absent.
// An unconfigured ledger is left out of the tier chain instead of being
// reported as degraded on every call.
type configurable interface {
	Configured() bool
}

// LocalStore is the process-owned tier.
type LocalStore interface {
	FindByID(ctx context.Context, importerID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, importerID string, fn func(*models.Profile) error) (*models.Profile, error)
	Reset(ctx context.Context)
}

const defaultTierTimeout = 2 * time.Second

// Service is the importer identity store.
type Service struct {
	cache  Cache
	ledger Ledger
	local  LocalStore

	breaker     *circuit.Breaker
	locks       *keyLocks
	stale       *staleKeys
	flights     singleflight.Group
	tierTimeout time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTierTimeout bounds every cache and ledger call.
func WithTierTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tierTimeout = d
		}
	}
}

// WithLedgerBreaker replaces the default ledger circuit breaker.
func WithLedgerBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		if b != nil {
			s.breaker = b
		}
	}
}

// WithTracer sets the tracer used for tier spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs the identity store over its three tiers. A nil or
// unconfigured ledger leaves the chain with cache and local only.
func New(cache Cache, ledger Ledger, local LocalStore, opts ...Option) *Service {
	s := &Service{
		cache:       cache,
		ledger:      ledger,
		local:       local,
		breaker:     circuit.New("ledger"),
		locks:       newKeyLocks(),
		stale:       newStaleKeys(),
		tierTimeout: defaultTierTimeout,
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("clearance/internal/importer/service"),
	}
	if c, ok := ledger.(configurable); ok && !c.Configured() {
		s.ledger = nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Query resolves a profile through the tier chain. Misses on every tier
// return a NotFound error. Concurrent misses for one key share a single
// resolution, which runs detached from any one caller's cancellation. A
// caller whose context ends first stops waiting and answers from the local
// tier.
func (s *Service) Query(ctx context.Context, importerID string) (*models.Profile, error) {
	importerID = strings.TrimSpace(importerID)
	if importerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "importer id is required")
	}
	ctx, span := s.tracer.Start(ctx, "importer.Query",
		trace.WithAttributes(attribute.String("importer.id", importerID)))
	defer span.End()

	flightCtx := context.WithoutCancel(ctx)
	flight := s.flights.DoChan(importerID, func() (any, error) {
		return s.resolveShared(flightCtx, importerID)
	})

	var (
		res resolution
		err error
	)
	select {
	case r := <-flight:
		span.SetAttributes(attribute.Bool("importer.shared", r.Shared))
		if r.Err == nil {
			res = r.Val.(resolution)
		}
		err = r.Err
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "importer query cancelled, answering from local tier",
			"importer_id", importerID,
			"error", ctx.Err(),
		)
		res, err = s.resolveLocal(ctx, importerID)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "importer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve importer")
	}
	span.SetAttributes(attribute.String("importer.tier", res.tier))
	return res.profile.Clone(), nil
}

// Register creates a profile. It fails with a Conflict error when any
// reachable tier already holds the key. The ledger and cache writes are
// best-effort; only a local-tier failure fails the call.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.Profile, error) {
	reg.ImporterID = strings.TrimSpace(reg.ImporterID)
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "importer.Register",
		trace.WithAttributes(attribute.String("importer.id", reg.ImporterID)))
	defer span.End()

	unlock := s.locks.Lock(reg.ImporterID)
	defer unlock()

	if err := s.ensureAbsent(ctx, reg.ImporterID); err != nil {
		s.metrics.IncrementWrite("register", "conflict")
		return nil, err
	}

	profile := models.NewProfile(reg, requestcontext.Now(ctx))

	if s.ledger != nil {
		err := s.callLedger(ctx, func(ctx context.Context) error {
			return s.ledger.Register(ctx, profile)
		})
		switch {
		case err == nil:
		case errors.Is(err, sentinel.ErrConflict):
			s.metrics.IncrementWrite("register", "conflict")
			return nil, dErrors.New(dErrors.CodeConflict, "importer already exists")
		default:
			s.degraded(ctx, tierLedger, "register", reg.ImporterID, err)
		}
	}

	if err := s.local.Create(ctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementWrite("register", "conflict")
			return nil, dErrors.New(dErrors.CodeConflict, "importer already exists")
		}
		s.metrics.IncrementWrite("register", "failed")
		s.logger.ErrorContext(ctx, "importer registration failed on every tier",
			"importer_id", reg.ImporterID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "all tiers failed")
	}

	s.populateCache(ctx, "register", profile)
	s.flights.Forget(reg.ImporterID)
	s.metrics.IncrementWrite("register", "ok")
	s.logger.InfoContext(ctx, "importer registered",
		"importer_id", reg.ImporterID,
		"trust_score", profile.TrustScore,
		"request_id", requestcontext.RequestID(ctx),
	)
	return profile.Clone(), nil
}

// ensureAbsent consults every tier. An unreachable tier cannot prove
// presence, so it is skipped.
func (s *Service) ensureAbsent(ctx context.Context, importerID string) error {
	for _, r := range s.chain() {
		_, err := s.observe(ctx, r, importerID)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "duplicate importer registration",
				"importer_id", importerID,
				"tier", r.tier,
			)
			return dErrors.New(dErrors.CodeConflict, "importer already exists")
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			s.degraded(ctx, r.tier, "register", importerID, err)
		}
	}
	return nil
}

// AddViolation appends a violation to the local record, recomputes trust,
// forwards the violation to the ledger, and evicts the cache entry before
// returning. A missing local record is a NotFound error even if the ledger
// holds the importer.
func (s *Service) AddViolation(ctx context.Context, importerID string, v models.Violation) (*models.Profile, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "add_violation", importerID,
		func(p *models.Profile, now time.Time) error {
			return p.AppendViolation(v, now)
		},
		func(ctx context.Context, p *models.Profile) error {
			return s.ledger.AddViolation(ctx, p.ImporterID, p.ViolationHistory[len(p.ViolationHistory)-1])
		},
	)
}

// LogInspection appends an inspection outcome. Same write path as AddViolation.
func (s *Service) LogInspection(ctx context.Context, importerID string, i models.Inspection) (*models.Profile, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "log_inspection", importerID,
		func(p *models.Profile, now time.Time) error {
			return p.AppendInspection(i, now)
		},
		func(ctx context.Context, p *models.Profile) error {
			return s.ledger.LogInspection(ctx, p.ImporterID, p.InspectionLogs[len(p.InspectionLogs)-1])
		},
	)
}

// AddCertificate appends an AEO certificate. Same write path as AddViolation.
func (s *Service) AddCertificate(ctx context.Context, importerID string, c models.AEOCertificate) (*models.Profile, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "add_certificate", importerID,
		func(p *models.Profile, now time.Time) error {
			return p.AppendCertificate(c, now)
		},
		func(ctx context.Context, p *models.Profile) error {
			return s.ledger.AddCertificate(ctx, p.ImporterID, p.AEOCertificates[len(p.AEOCertificates)-1])
		},
	)
}

func (s *Service) mutate(
	ctx context.Context,
	op, importerID string,
	apply func(p *models.Profile, now time.Time) error,
	forward func(ctx context.Context, p *models.Profile) error,
) (*models.Profile, error) {
	importerID = strings.TrimSpace(importerID)
	if importerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "importer id is required")
	}
	ctx, span := s.tracer.Start(ctx, "importer."+op,
		trace.WithAttributes(attribute.String("importer.id", importerID)))
	defer span.End()

	unlock := s.locks.Lock(importerID)
	defer unlock()

	now := requestcontext.Now(ctx)
	updated, err := s.local.Update(ctx, importerID, func(p *models.Profile) error {
		return apply(p, now)
	})
	if err != nil {
		s.metrics.IncrementWrite(op, "rejected")
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "importer not found")
		}
		if dErrors.Is(err) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update importer")
	}

	if s.ledger != nil {
		if err := s.callLedger(ctx, func(ctx context.Context) error {
			return forward(ctx, updated)
		}); err != nil {
			s.degraded(ctx, tierLedger, op, importerID, err)
		}
	}

	s.invalidateCache(ctx, op, importerID)
	s.flights.Forget(importerID)
	s.metrics.IncrementWrite(op, "ok")
	s.logger.InfoContext(ctx, "importer updated",
		"op", op,
		"importer_id", importerID,
		"trust_score", updated.TrustScore,
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
}

// Reset clears the local tier. Cache and ledger are left alone.
func (s *Service) Reset(ctx context.Context) {
	s.local.Reset(ctx)
	s.logger.InfoContext(ctx, "local identity tier reset")
}

// LedgerCircuitOpen reports whether the ledger tier is currently skipped.
func (s *Service) LedgerCircuitOpen() bool {
	return s.breaker.IsOpen()
}
