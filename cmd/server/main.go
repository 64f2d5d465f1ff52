package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"

	"clearance/internal/importer/cache"
	importerhandler "clearance/internal/importer/handler"
	"clearance/internal/importer/ledger"
	importermetrics "clearance/internal/importer/metrics"
	importerservice "clearance/internal/importer/service"
	importerstore "clearance/internal/importer/store"
	jwttoken "clearance/internal/jwt_token"
	"clearance/internal/override/feedback"
	overridehandler "clearance/internal/override/handler"
	overridemetrics "clearance/internal/override/metrics"
	overrideservice "clearance/internal/override/service"
	overridestore "clearance/internal/override/store"
	"clearance/internal/platform/config"
	"clearance/internal/platform/httpserver"
	"clearance/internal/platform/logger"
	platformmetrics "clearance/internal/platform/metrics"
	"clearance/internal/platform/middleware"
	"clearance/internal/platform/redis"
	"clearance/internal/risk"
	riskhandler "clearance/internal/risk/handler"
	"clearance/internal/risk/intel"
	riskmetrics "clearance/internal/risk/metrics"
	"clearance/internal/risk/origin"
	httptransport "clearance/internal/transport/http"
	"clearance/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := httpserver.New(cfg.Server.Addr, app, log)
	go func() {
		log.Info("starting clearance", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	identity, identityClosers, err := buildIdentity(ctx, cfg, log)
	closers = append(closers, identityClosers...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	scoring, err := buildScoring(cfg, identity, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	overrides, overrideClosers, err := buildOverrides(ctx, cfg, log)
	closers = append(closers, overrideClosers...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var requireOfficer func(http.Handler) http.Handler
	if cfg.Server.OfficerSigningKey != "" {
		tokens := jwttoken.NewJWTService(cfg.Server.OfficerSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
		requireOfficer = middleware.RequireOfficer(tokens, log)
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Importer:       importerhandler.New(identity, log),
		Risk:           riskhandler.New(scoring, log),
		Override:       overridehandler.New(overrides, log),
		RequireOfficer: requireOfficer,
		Metrics:        httptransport.PrometheusHandler(),
		HTTPMetrics:    platformmetrics.New(nil),
	}, log)
	return router, cleanup, nil
}

func buildIdentity(ctx context.Context, cfg config.Config, log *slog.Logger) (*importerservice.Service, []func(), error) {
	var closers []func()

	var profileCache importerservice.Cache = cache.NewInMemoryCache(cfg.Identity.CacheTTL)
	redisClient, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, closers, err
	}
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
		profileCache = cache.NewRedisCache(redisClient, cfg.Identity.CacheTTL)
		log.Info("identity cache tier: redis")
	} else {
		log.Info("identity cache tier: in-memory")
	}

	var ledgerClient importerservice.Ledger = ledger.Unavailable{}
	if cfg.Ledger.URL != "" {
		ledgerClient = ledger.NewHTTPClient(cfg.Ledger.URL, ledger.WithToken(cfg.Ledger.Token))
		log.Info("identity ledger tier: http gateway", "url", cfg.Ledger.URL)
	} else {
		log.Info("identity ledger tier: not configured, reads go cache then local")
	}

	breaker := circuit.New("ledger",
		circuit.WithFailureThreshold(cfg.Identity.LedgerFailureThreshold),
		circuit.WithCooldown(cfg.Identity.LedgerCooldown),
	)

	svc := importerservice.New(profileCache, ledgerClient, importerstore.NewInMemoryStore(),
		importerservice.WithLogger(log),
		importerservice.WithMetrics(importermetrics.New()),
		importerservice.WithTierTimeout(cfg.Identity.TierTimeout),
		importerservice.WithLedgerBreaker(breaker),
		importerservice.WithTracer(otel.Tracer("clearance/importer")),
	)
	return svc, closers, nil
}

func buildScoring(cfg config.Config, identity risk.IdentityResolver, log *slog.Logger) (*risk.Service, error) {
	origins := origin.Default()
	if cfg.Scoring.OriginRiskFile != "" {
		loaded, err := origin.Load(cfg.Scoring.OriginRiskFile)
		if err != nil {
			return nil, err
		}
		origins = loaded
	}

	opts := []risk.EngineOption{
		risk.WithThresholds(risk.Thresholds{Red: cfg.Scoring.RedThreshold, Yellow: cfg.Scoring.YellowThreshold}),
		risk.WithOriginTable(origins),
	}
	if cfg.Scoring.IntelScreening {
		opts = append(opts, risk.WithScreener(intel.NewScreener()))
	}
	engine, err := risk.NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return risk.NewService(engine, identity,
		risk.WithLogger(log),
		risk.WithMetrics(riskmetrics.New()),
	), nil
}

func buildOverrides(ctx context.Context, cfg config.Config, log *slog.Logger) (*overrideservice.Service, []func(), error) {
	var closers []func()

	var store overrideservice.Store = overridestore.NewInMemoryStore()
	if cfg.Override.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.Override.DatabaseURL)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			return nil, closers, err
		}
		if err := overridestore.Migrate(ctx, db); err != nil {
			return nil, closers, err
		}
		store = overridestore.NewPostgres(db)
		log.Info("override log: postgres")
	} else {
		log.Info("override log: in-memory")
	}

	opts := []overrideservice.Option{
		overrideservice.WithLogger(log),
		overrideservice.WithMetrics(overridemetrics.New()),
		overrideservice.WithPublishTimeout(cfg.Override.FeedbackTimeout),
	}
	if len(cfg.Override.KafkaBrokers) > 0 {
		publisher, err := feedback.NewKafkaPublisher(cfg.Override.KafkaBrokers, cfg.Override.FeedbackTopic,
			kgo.RecordDeliveryTimeout(cfg.Override.FeedbackTimeout))
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, publisher.Close)
		opts = append(opts, overrideservice.WithPublisher(publisher))
		log.Info("override feedback: kafka", "topic", cfg.Override.FeedbackTopic)
	}
	return overrideservice.New(store, opts...), closers, nil
}
