package risk

import (
	"strings"

	"clearance/internal/risk/intel"
	dErrors "clearance/pkg/domain-errors"
)

// Lane is the admission outcome for a shipment.
type Lane string

const (
	LaneGreen  Lane = "GREEN"
	LaneYellow Lane = "YELLOW"
	LaneRed    Lane = "RED"
)

// ParseLane accepts a lane name in any case.
func ParseLane(s string) (Lane, error) {
	switch l := Lane(strings.ToUpper(strings.TrimSpace(s))); l {
	case LaneGreen, LaneYellow, LaneRed:
		return l, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "lane must be GREEN, YELLOW or RED")
}

// ShipmentRequest carries the declared attributes of one shipment. JSON names
// match the clearance API.
type ShipmentRequest struct {
	ContainerID        string   `json:"container_id"`
	OriginCountry      string   `json:"origin_country"`
	CargoCategory      string   `json:"cargo_category"`
	DeclaredValue      float64  `json:"cargo_declared_value"`
	CargoWeight        float64  `json:"cargo_weight"`
	CargoVolume        float64  `json:"cargo_volume"`
	TransshipmentCount int      `json:"route_transshipment_count"`
	VisionAnomalyFlag  bool     `json:"vision_anomaly_flag"`
	VisionConfidence   *float64 `json:"vision_confidence,omitempty"`
	ImporterID         string   `json:"importer_id,omitempty"`
	ImporterName       string   `json:"importer_name,omitempty"`
	TrustScore         *float64 `json:"blockchain_trust_score,omitempty"`
}

// Validate rejects inputs outside their documented domain.
func (r *ShipmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ContainerID = strings.TrimSpace(r.ContainerID)
	r.ImporterID = strings.TrimSpace(r.ImporterID)
	if r.DeclaredValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "cargo_declared_value must be positive")
	}
	if r.CargoWeight < 0 || r.CargoVolume < 0 {
		return dErrors.New(dErrors.CodeValidation, "cargo weight and volume must be non-negative")
	}
	if r.TransshipmentCount < 0 {
		return dErrors.New(dErrors.CodeValidation, "route_transshipment_count must be non-negative")
	}
	if c := r.VisionConfidence; c != nil && (*c < 0 || *c > 1) {
		return dErrors.New(dErrors.CodeValidation, "vision_confidence must be between 0 and 1")
	}
	if t := r.TrustScore; t != nil && (*t < 0 || *t > 100) {
		return dErrors.New(dErrors.CodeValidation, "blockchain_trust_score must be between 0 and 100")
	}
	return nil
}

// Contribution is one weighted component of the risk score.
type Contribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// Decision is the immutable result of scoring a shipment.
type Decision struct {
	ContainerID   string         `json:"container_id,omitempty"`
	RiskScore     float64        `json:"risk_score"`
	Lane          Lane           `json:"lane"`
	Contributions []Contribution `json:"top_features"`
	// ContributionSource names the path the contributions were computed on.
	// It is always the weighted sum, so the contributions add up to
	// RiskScore only when ModelUsed is ModelFallback.
	ContributionSource string        `json:"contribution_source"`
	ModelUsed          string        `json:"model_used"`
	TrustScore         float64       `json:"trust_score"`
	Intel              intel.Signals `json:"intel"`
}

// Model tags.
const (
	ModelFallback = "fallback_weighted_sum"
	ModelPrimary  = "primary_model"
)

// Feature names reported in contributions.
const (
	FeatureTrust  = "blockchain_trust_score"
	FeatureVision = "vision_confidence"
	FeatureValue  = "cargo_declared_value_log"
	FeatureRoute  = "route_origin_risk_index"
	FeatureIntel  = "intel_composite_score"
)
