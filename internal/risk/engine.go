// Package risk converts a shipment's declared attributes and the importer's
// trust score into a bounded risk score and a lane.
package risk

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"clearance/internal/risk/intel"
	"clearance/internal/risk/origin"
	dErrors "clearance/pkg/domain-errors"
)

// Component weights. They sum to 1.
const (
	WeightTrust  = 0.40
	WeightVision = 0.30
	WeightValue  = 0.15
	WeightRoute  = 0.10
	WeightIntel  = 0.05
)

// Defaults applied when an input is absent.
const (
	DefaultTrustScore       = 50.0
	DefaultVisionConfidence = 0.0
	DefaultDeclaredValue    = 1.0
)

// Thresholds split the score range into lanes: score > Red is RED,
// score > Yellow is YELLOW, anything else GREEN.
type Thresholds struct {
	Red    float64
	Yellow float64
}

// DefaultThresholds are 60/20.
var DefaultThresholds = Thresholds{Red: 60, Yellow: 20}

// Validate checks 0 <= yellow < red <= 100.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Yellow) || math.IsNaN(t.Red) || t.Yellow < 0 || t.Red > 100 || t.Yellow >= t.Red {
		return dErrors.New(dErrors.CodeValidation, "lane thresholds must satisfy 0 <= yellow < red <= 100")
	}
	return nil
}

// Lane maps a score to its lane. Ties go to the lower lane.
func (t Thresholds) Lane(score float64) Lane {
	switch {
	case score > t.Red:
		return LaneRed
	case score > t.Yellow:
		return LaneYellow
	default:
		return LaneGreen
	}
}

// Screener produces intelligence signals for a shipment.
type Screener interface {
	Screen(importerName, originCountryName string) intel.Signals
}

// Probabilities are a primary model's lane class probabilities.
type Probabilities struct {
	Green  float64
	Yellow float64
	Red    float64
}

// Features is the normalized input handed to a primary model.
type Features struct {
	TrustScore         float64
	VisionAnomalyFlag  bool
	VisionConfidence   float64
	DeclaredValueLog   float64
	CargoWeight        float64
	CargoVolume        float64
	OriginRiskIndex    float64
	TransshipmentCount int
	Intel              intel.Signals
}

// Model is an optional trained classifier. When it declines (ok=false) the
// weighted-sum formula is used.
type Model interface {
	Predict(f Features) (p Probabilities, ok bool)
}

// Engine scores shipments. It is safe for concurrent use and has no side
// effects.
type Engine struct {
	thresholds Thresholds
	origins    *origin.Table
	screener   Screener
	model      Model
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds overrides the lane thresholds.
func WithThresholds(t Thresholds) EngineOption {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithOriginTable replaces the built-in origin table.
func WithOriginTable(t *origin.Table) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.origins = t
		}
	}
}

// WithScreener wires an intelligence source. Without one the intelligence
// component is 0.
func WithScreener(s Screener) EngineOption {
	return func(e *Engine) {
		e.screener = s
	}
}

// WithModel wires a primary model.
func WithModel(m Model) EngineOption {
	return func(e *Engine) {
		e.model = m
	}
}

// NewEngine builds an engine. Thresholds are validated here so Score never
// fails.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		thresholds: DefaultThresholds,
		origins:    origin.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Thresholds returns the configured lane thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Score computes the decision for req. trust is the importer's trust score,
// nil when no profile resolved. Contributions always come from the weighted
// sum; when a primary model answers they explain the inputs but do not add
// up to the score.
func (e *Engine) Score(req ShipmentRequest, trust *float64) Decision {
	f := e.features(req, trust)

	contributions := []Contribution{
		{Feature: FeatureTrust, Contribution: (100 - f.TrustScore) * WeightTrust},
		{Feature: FeatureVision, Contribution: visionComponent(f)},
		{Feature: FeatureValue, Contribution: math.Min(f.DeclaredValueLog/20*100, 100) * WeightValue},
		{Feature: FeatureRoute, Contribution: (f.OriginRiskIndex*10 + float64(f.TransshipmentCount)*10) * WeightRoute},
		{Feature: FeatureIntel, Contribution: f.Intel.Score() * WeightIntel},
	}

	var total float64
	for _, c := range contributions {
		total += c.Contribution
	}
	modelUsed := ModelFallback

	if e.model != nil {
		if p, ok := e.model.Predict(f); ok {
			total = p.Yellow*40 + p.Red*100
			modelUsed = ModelPrimary
		}
	}

	for i := range contributions {
		contributions[i].Contribution = round2(contributions[i].Contribution)
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Contribution) > math.Abs(contributions[j].Contribution)
	})

	score := round2(clamp(total, 0, 100))
	return Decision{
		ContainerID:        req.ContainerID,
		RiskScore:          score,
		Lane:               e.thresholds.Lane(score),
		Contributions:      contributions,
		ContributionSource: ModelFallback,
		ModelUsed:          modelUsed,
		TrustScore:         f.TrustScore,
		Intel:              f.Intel,
	}
}

func (e *Engine) features(req ShipmentRequest, trust *float64) Features {
	f := Features{
		TrustScore:         DefaultTrustScore,
		VisionAnomalyFlag:  req.VisionAnomalyFlag,
		VisionConfidence:   DefaultVisionConfidence,
		CargoWeight:        req.CargoWeight,
		CargoVolume:        req.CargoVolume,
		TransshipmentCount: max(req.TransshipmentCount, 0),
	}
	if trust != nil {
		f.TrustScore = clamp(*trust, 0, 100)
	}
	if req.VisionConfidence != nil {
		f.VisionConfidence = clamp(*req.VisionConfidence, 0, 1)
	}
	value := req.DeclaredValue
	if value <= 0 || math.IsNaN(value) {
		value = DefaultDeclaredValue
	}
	f.DeclaredValueLog = math.Log(value)

	coefficient, code, _ := e.origins.Lookup(req.OriginCountry)
	f.OriginRiskIndex = coefficient

	if e.screener != nil {
		country := e.origins.CountryName(code)
		if country == "" {
			country = req.OriginCountry
		}
		f.Intel = e.screener.Screen(req.ImporterName, country)
	}
	return f
}

func visionComponent(f Features) float64 {
	if f.VisionAnomalyFlag {
		return f.VisionConfidence * 100 * WeightVision
	}
	return f.VisionConfidence * 20 * WeightVision
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
