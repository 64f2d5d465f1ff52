package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server   Server
	Redis    RedisConfig
	Ledger   LedgerConfig
	Identity IdentityConfig
	Scoring  ScoringConfig
	Override OverrideConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
	// OfficerSigningKey enables bearer-token authentication of override
	// submissions when non-empty.
	OfficerSigningKey string
}

// RedisConfig configures the cache tier. An empty URL selects the in-memory cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LedgerConfig configures the ledger tier. An empty URL selects the
// unavailable ledger, so every lookup falls through to the local tier.
type LedgerConfig struct {
	URL   string
	Token string
}

// IdentityConfig tunes the tiered identity store.
type IdentityConfig struct {
	CacheTTL    time.Duration
	TierTimeout time.Duration
	// Ledger circuit breaker.
	LedgerFailureThreshold int
	LedgerCooldown         time.Duration
}

// ScoringConfig holds the lane thresholds: score > Red is RED, score > Yellow
// is YELLOW, anything else is GREEN.
type ScoringConfig struct {
	RedThreshold    float64
	YellowThreshold float64
	IntelScreening  bool
	// OriginRiskFile is an optional YAML file of coefficient overrides.
	OriginRiskFile string
}

// OverrideConfig configures override persistence and the feedback queue.
type OverrideConfig struct {
	DatabaseURL   string
	KafkaBrokers  []string
	FeedbackTopic string
	// FeedbackTimeout bounds one feedback publish.
	FeedbackTimeout time.Duration
}

// DefaultCacheTTL is how long a resolved importer profile stays cached.
var DefaultCacheTTL = 6 * time.Hour

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		d, err := getenvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}
	num := func(key string, def float64) float64 {
		f, err := getenvFloat(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return f
	}
	count := func(key string, def int) int {
		n, err := getenvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:              getenv("CLEARANCE_ADDR", ":8080"),
			OfficerSigningKey: os.Getenv("OFFICER_JWT_SIGNING_KEY"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     count("REDIS_POOL_SIZE", 10),
			MinIdleConns: count("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", time.Second),
		},
		Ledger: LedgerConfig{
			URL:   strings.TrimRight(os.Getenv("LEDGER_URL"), "/"),
			Token: os.Getenv("LEDGER_TOKEN"),
		},
		Identity: IdentityConfig{
			CacheTTL:               dur("CACHE_TTL", DefaultCacheTTL),
			TierTimeout:            dur("TIER_TIMEOUT", 2*time.Second),
			LedgerFailureThreshold: count("LEDGER_FAILURE_THRESHOLD", 5),
			LedgerCooldown:         dur("LEDGER_COOLDOWN", 30*time.Second),
		},
		Scoring: ScoringConfig{
			RedThreshold:    num("LANE_RED_THRESHOLD", 60),
			YellowThreshold: num("LANE_YELLOW_THRESHOLD", 20),
			IntelScreening:  os.Getenv("INTEL_SCREENING") == "true",
			OriginRiskFile:  os.Getenv("ORIGIN_RISK_FILE"),
		},
		Override: OverrideConfig{
			DatabaseURL:     os.Getenv("DATABASE_URL"),
			KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			FeedbackTopic:   getenv("FEEDBACK_TOPIC", "clearance.override-feedback"),
			FeedbackTimeout: dur("FEEDBACK_TIMEOUT", 2*time.Second),
		},
	}

	if err := cfg.Scoring.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Identity.CacheTTL <= 0 {
		errs = append(errs, "CACHE_TTL must be positive")
	}
	if cfg.Identity.TierTimeout <= 0 {
		errs = append(errs, "TIER_TIMEOUT must be positive")
	}
	if cfg.Override.FeedbackTimeout <= 0 {
		errs = append(errs, "FEEDBACK_TIMEOUT must be positive")
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Validate checks 0 <= yellow < red <= 100. NaN satisfies no comparison and
// is rejected up front.
func (s ScoringConfig) Validate() error {
	if math.IsNaN(s.YellowThreshold) || math.IsNaN(s.RedThreshold) ||
		s.YellowThreshold < 0 || s.RedThreshold > 100 || s.YellowThreshold >= s.RedThreshold {
		return fmt.Errorf("lane thresholds must satisfy 0 <= yellow < red <= 100 (yellow=%v red=%v)",
			s.YellowThreshold, s.RedThreshold)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
