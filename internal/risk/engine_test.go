package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearance/internal/risk/intel"
)

func ptr(v float64) *float64 { return &v }

func newEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestLaneBoundaries(t *testing.T) {
	th := DefaultThresholds
	tests := []struct {
		score float64
		want  Lane
	}{
		{0, LaneGreen},
		{20.00, LaneGreen},
		{20.01, LaneYellow},
		{60.00, LaneYellow},
		{60.01, LaneRed},
		{100, LaneRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Lane(tt.score), "score %.2f", tt.score)
	}
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds.Validate())
	assert.Error(t, Thresholds{Red: 20, Yellow: 60}.Validate())
	assert.Error(t, Thresholds{Red: 101, Yellow: 20}.Validate())
	assert.Error(t, Thresholds{Red: 50, Yellow: -1}.Validate())
	assert.Error(t, Thresholds{Red: math.NaN(), Yellow: 20}.Validate())

	_, err := NewEngine(WithThresholds(Thresholds{Red: 10, Yellow: 10}))
	assert.Error(t, err)
}

func TestScenarioB(t *testing.T) {
	e := newEngine(t)
	d := e.Score(ShipmentRequest{
		ContainerID:        "MSCU1234567",
		OriginCountry:      "CN",
		VisionAnomalyFlag:  true,
		VisionConfidence:   ptr(0.96),
		DeclaredValue:      480000,
		TransshipmentCount: 3,
	}, ptr(22))

	assert.Equal(t, LaneRed, d.Lane)
	assert.Equal(t, 75.31, d.RiskScore)
	assert.Equal(t, ModelFallback, d.ModelUsed)

	require.Len(t, d.Contributions, 5)
	assert.Equal(t, []Contribution{
		{FeatureTrust, 31.2},
		{FeatureVision, 28.8},
		{FeatureValue, 9.81},
		{FeatureRoute, 5.5},
		{FeatureIntel, 0},
	}, d.Contributions)
}

func TestDefaultsApplyWhenInputsAbsent(t *testing.T) {
	d := newEngine(t).Score(ShipmentRequest{}, nil)

	// trust 50 -> 20, vision 0, ln(1) = 0, unknown origin 1.0 -> 1
	assert.Equal(t, 21.0, d.RiskScore)
	assert.Equal(t, LaneYellow, d.Lane)
	assert.Equal(t, DefaultTrustScore, d.TrustScore)
}

func TestVisionDampedWithoutFlag(t *testing.T) {
	e := newEngine(t)
	flagged := e.Score(ShipmentRequest{VisionAnomalyFlag: true, VisionConfidence: ptr(0.5)}, ptr(100))
	unflagged := e.Score(ShipmentRequest{VisionConfidence: ptr(0.5)}, ptr(100))

	assert.Equal(t, 15.0, contribution(flagged, FeatureVision))
	assert.Equal(t, 3.0, contribution(unflagged, FeatureVision))
}

func TestDeclaredValueIsCapped(t *testing.T) {
	d := newEngine(t).Score(ShipmentRequest{DeclaredValue: 1e30}, ptr(100))
	assert.Equal(t, 15.0, contribution(d, FeatureValue))
}

func TestIntelComponent(t *testing.T) {
	req := ShipmentRequest{ImporterName: "Dawood Ibrahim Trading", OriginCountry: "KP"}

	without := newEngine(t).Score(req, ptr(100))
	assert.Equal(t, 0.0, contribution(without, FeatureIntel))
	assert.False(t, without.Intel.Any())

	with := newEngine(t, WithScreener(intel.NewScreener())).Score(req, ptr(100))
	assert.Equal(t, 5.0, contribution(with, FeatureIntel))
	assert.True(t, with.Intel.OFAC)
}

type stubModel struct {
	p  Probabilities
	ok bool
}

func (m stubModel) Predict(Features) (Probabilities, bool) { return m.p, m.ok }

func TestPrimaryModel(t *testing.T) {
	req := ShipmentRequest{OriginCountry: "SG", DeclaredValue: 1000}

	primary := newEngine(t, WithModel(stubModel{p: Probabilities{Yellow: 0.5, Red: 0.5}, ok: true})).Score(req, ptr(90))
	assert.Equal(t, ModelPrimary, primary.ModelUsed)
	assert.Equal(t, 70.0, primary.RiskScore)
	assert.Equal(t, LaneRed, primary.Lane)
	assert.Len(t, primary.Contributions, 5)
	assert.Equal(t, ModelFallback, primary.ContributionSource)
	var sum float64
	for _, c := range primary.Contributions {
		sum += c.Contribution
	}
	assert.NotEqual(t, primary.RiskScore, round2(sum))

	declined := newEngine(t, WithModel(stubModel{ok: false})).Score(req, ptr(90))
	assert.Equal(t, ModelFallback, declined.ModelUsed)
	assert.Equal(t, ModelFallback, declined.ContributionSource)
}

func TestCustomThresholds(t *testing.T) {
	e := newEngine(t, WithThresholds(Thresholds{Red: 80, Yellow: 40}))
	d := e.Score(ShipmentRequest{
		OriginCountry: "CN", VisionAnomalyFlag: true, VisionConfidence: ptr(0.96),
		DeclaredValue: 480000, TransshipmentCount: 3,
	}, ptr(22))
	assert.Equal(t, LaneYellow, d.Lane)
}

func FuzzScoreBounded(f *testing.F) {
	f.Add(50.0, 0.5, true, 1000.0, 2, "CN")
	f.Add(0.0, 1.0, true, 1e12, 40, "KP")
	f.Add(100.0, 0.0, false, 0.01, 0, "")
	e, err := NewEngine(WithScreener(intel.NewScreener()))
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, trust, confidence float64, flag bool, value float64, hops int, origin string) {
		if math.IsNaN(trust) || math.IsNaN(confidence) || math.IsNaN(value) || math.IsInf(value, 0) {
			t.Skip()
		}
		d := e.Score(ShipmentRequest{
			OriginCountry: origin, VisionAnomalyFlag: flag, VisionConfidence: &confidence,
			DeclaredValue: value, TransshipmentCount: hops,
		}, &trust)
		if d.RiskScore < 0 || d.RiskScore > 100 {
			t.Fatalf("risk score %v out of bounds", d.RiskScore)
		}
		if d.Lane != e.Thresholds().Lane(d.RiskScore) {
			t.Fatalf("lane %s inconsistent with score %v", d.Lane, d.RiskScore)
		}
		again := e.Score(ShipmentRequest{
			OriginCountry: origin, VisionAnomalyFlag: flag, VisionConfidence: &confidence,
			DeclaredValue: value, TransshipmentCount: hops,
		}, &trust)
		if again.RiskScore != d.RiskScore {
			t.Fatalf("non-deterministic score")
		}
	})
}

func TestContributionsRankedByMagnitude(t *testing.T) {
	d := newEngine(t).Score(ShipmentRequest{DeclaredValue: 0.5, OriginCountry: "KP", TransshipmentCount: 4}, ptr(100))
	for i := 1; i < len(d.Contributions); i++ {
		assert.GreaterOrEqual(t, math.Abs(d.Contributions[i-1].Contribution), math.Abs(d.Contributions[i].Contribution))
	}
}

func contribution(d Decision, feature string) float64 {
	for _, c := range d.Contributions {
		if c.Feature == feature {
			return c.Contribution
		}
	}
	return math.NaN()
}
