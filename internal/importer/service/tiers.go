package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

const (
	tierCache  = "cache"
	tierLedger = "ledger"
	tierLocal  = "local"
)

// resolver is one step of the read chain.
type resolver struct {
	tier string
	find func(ctx context.Context, importerID string) (*models.Profile, error)
}

// errStale is returned by the cache resolver for keys whose invalidation
// failed; it is a miss, not a degradation.
var errStale = fmt.Errorf("cache entry marked stale: %w", sentinel.ErrNotFound)

// resolution is the outcome of a successful read: the profile and the tier
// that answered.
type resolution struct {
	profile *models.Profile
	tier    string
}

func (s *Service) chain() []resolver {
	chain := []resolver{{tier: tierCache, find: s.findInCache}}
	if s.ledger != nil {
		chain = append(chain, resolver{tier: tierLedger, find: s.findInLedger})
	}
	return append(chain, resolver{tier: tierLocal, find: s.findInLocal})
}

// resolveShared is the body of a Query flight. It holds the key's read lock
// so a writer cannot invalidate the cache between the tier reads and the
// cache refresh below.
func (s *Service) resolveShared(ctx context.Context, importerID string) (resolution, error) {
	unlock := s.locks.RLock(importerID)
	defer unlock()

	profile, tier, err := s.resolve(ctx, "query", importerID)
	if err != nil {
		s.metrics.IncrementResolution("none")
		return resolution{}, err
	}
	s.metrics.IncrementResolution(tier)
	if tier != tierCache {
		s.populateCache(ctx, "query", profile)
	}
	return resolution{profile: profile, tier: tier}, nil
}

// resolveLocal answers a Query whose caller stopped waiting on the shared
// flight. The local tier never blocks on I/O.
func (s *Service) resolveLocal(ctx context.Context, importerID string) (resolution, error) {
	profile, err := s.observe(ctx, resolver{tier: tierLocal, find: s.findInLocal}, importerID)
	if err != nil {
		s.metrics.IncrementResolution("none")
		return resolution{}, err
	}
	s.metrics.IncrementResolution(tierLocal)
	return resolution{profile: profile, tier: tierLocal}, nil
}

// resolve walks the chain in priority order. The first hit wins; misses and
// unavailable tiers fall through. Returns sentinel.ErrNotFound when every
// tier misses.
func (s *Service) resolve(ctx context.Context, op, importerID string) (*models.Profile, string, error) {
	for _, r := range s.chain() {
		profile, err := s.observe(ctx, r, importerID)
		switch {
		case err == nil:
			return profile, r.tier, nil
		case errors.Is(err, sentinel.ErrNotFound):
			continue
		default:
			s.degraded(ctx, r.tier, op, importerID, err)
		}
	}
	return nil, "", sentinel.ErrNotFound
}

func (s *Service) observe(ctx context.Context, r resolver, importerID string) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "importer.tier."+r.tier,
		trace.WithAttributes(attribute.String("importer.id", importerID)))
	defer span.End()

	start := time.Now()
	profile, err := r.find(ctx, importerID)
	outcome := "hit"
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrNotFound):
		outcome = "miss"
	default:
		outcome = "unavailable"
		span.RecordError(err)
		span.SetStatus(codes.Error, "tier unavailable")
	}
	span.SetAttributes(attribute.String("tier.outcome", outcome))
	s.metrics.ObserveTier(r.tier, outcome, time.Since(start))
	return profile, err
}

func (s *Service) findInCache(ctx context.Context, importerID string) (*models.Profile, error) {
	if s.stale.has(importerID) {
		return nil, errStale
	}
	ctx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	defer cancel()
	return s.cache.Get(ctx, importerID)
}

func (s *Service) findInLedger(ctx context.Context, importerID string) (*models.Profile, error) {
	var profile *models.Profile
	err := s.callLedger(ctx, func(ctx context.Context) error {
		var err error
		profile, err = s.ledger.Query(ctx, importerID)
		return err
	})
	return profile, err
}

func (s *Service) findInLocal(ctx context.Context, importerID string) (*models.Profile, error) {
	return s.local.FindByID(ctx, importerID)
}

// callLedger runs fn under the tier timeout behind the ledger circuit
// breaker. Not-found and conflict are answers and count as successes.
func (s *Service) callLedger(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.breaker.Allow() {
		return fmt.Errorf("ledger circuit open: %w", sentinel.ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil || errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrConflict) {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "ledger circuit closed", "breaker", s.breaker.Name())
			s.metrics.SetLedgerCircuitOpen(false)
		}
		return err
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "ledger circuit opened", "breaker", s.breaker.Name(), "error", err)
		s.metrics.SetLedgerCircuitOpen(true)
	}
	return err
}

// populateCache refreshes the cache after a resolved miss. Failures are
// absorbed.
func (s *Service) populateCache(ctx context.Context, op string, profile *models.Profile) {
	ctx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	defer cancel()
	if err := s.cache.Set(ctx, profile); err != nil {
		s.degraded(ctx, tierCache, op, profile.ImporterID, err)
		return
	}
	s.stale.clear(profile.ImporterID)
}

// invalidateCache evicts the key and returns only once the cache can no
// longer serve the old entry: either the delete succeeded or the key is
// marked stale.
func (s *Service) invalidateCache(ctx context.Context, op, importerID string) {
	ctx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, importerID); err != nil {
		s.stale.mark(importerID)
		s.degraded(ctx, tierCache, op, importerID, err)
		return
	}
	s.stale.clear(importerID)
}

func (s *Service) degraded(ctx context.Context, tier, op, importerID string, err error) {
	s.metrics.IncrementDegradation(tier, op)
	s.logger.WarnContext(ctx, "identity tier degraded",
		"tier", tier,
		"op", op,
		"importer_id", importerID,
		"error", err,
	)
}
