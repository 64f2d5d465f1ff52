package handler

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearance/internal/risk"
	"clearance/pkg/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	engine, err := risk.NewEngine()
	require.NoError(t, err)
	r := chi.NewRouter()
	New(risk.NewService(engine, nil), nil).Register(r)
	return r
}

func TestHandleScore(t *testing.T) {
	router := newRouter(t)

	t.Run("high risk shipment lands in RED", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/score", map[string]any{
			"container_id":              "MSCU1234567",
			"origin_country":            "CN",
			"cargo_declared_value":      480000,
			"route_transshipment_count": 3,
			"vision_anomaly_flag":       true,
			"vision_confidence":         0.96,
			"blockchain_trust_score":    22,
		}))
		testutil.AssertStatusOK(t, rr)

		d := testutil.UnmarshalResponse[risk.Decision](t, rr)
		assert.Equal(t, "MSCU1234567", d.ContainerID)
		assert.Equal(t, risk.LaneRed, d.Lane)
		assert.Equal(t, 75.31, d.RiskScore)
		assert.Equal(t, risk.ModelFallback, d.ModelUsed)
		require.NotEmpty(t, d.Contributions)
		assert.Equal(t, risk.FeatureTrust, d.Contributions[0].Feature)
	})

	t.Run("empty body defaults to neutral inputs", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/score", map[string]any{}))
		testutil.AssertStatusOK(t, rr)
		d := testutil.UnmarshalResponse[risk.Decision](t, rr)
		assert.Equal(t, risk.LaneYellow, d.Lane)
		assert.Equal(t, 21.0, d.RiskScore)
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/score", "{"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("out of range confidence is rejected", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/score", map[string]any{
			"vision_confidence": 1.5,
		}))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}
