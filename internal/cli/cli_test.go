package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "clearance/internal/jwt_token"
	"clearance/internal/risk"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

const highRiskShipment = `{
	"container_id": "MSCU1234567",
	"origin_country": "CN",
	"cargo_declared_value": 480000,
	"route_transshipment_count": 3,
	"vision_anomaly_flag": true,
	"vision_confidence": 0.96,
	"blockchain_trust_score": 22
}`

func TestScoreJSON(t *testing.T) {
	out, err := run(t, highRiskShipment, "score", "--format", "json")
	require.NoError(t, err)

	var d risk.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, risk.LaneRed, d.Lane)
	assert.Equal(t, 75.31, d.RiskScore)
}

func TestScoreTextWithCustomThresholds(t *testing.T) {
	out, err := run(t, highRiskShipment, "score", "--format", "text", "--red", "80", "--yellow", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "YELLOW")
	assert.Contains(t, out, "75.31")
}

func TestScoreRejectsInvalidShipment(t *testing.T) {
	_, err := run(t, `{"vision_confidence": 2}`, "score", "--format", "json", "--red", "60", "--yellow", "20")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("OFFICER_JWT_SIGNING_KEY", "cli-test-key")

	out, err := run(t, "", "token", "--officer", "OFF-7", "--station", "PORT-3")
	require.NoError(t, err)

	claims, err := jwttoken.NewJWTService("cli-test-key", jwttoken.DefaultIssuer, jwttoken.DefaultAudience).
		ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "OFF-7", claims.OfficerID())
	assert.Equal(t, "PORT-3", claims.Station)
}
