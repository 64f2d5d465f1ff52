package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"clearance/internal/importer/models"
	dErrors "clearance/pkg/domain-errors"
)

type stubIdentity map[string]float64

func (s stubIdentity) Query(_ context.Context, id string) (*models.Profile, error) {
	if id == "broken" {
		return nil, errors.New("boom")
	}
	trust, ok := s[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "importer not found")
	}
	return &models.Profile{ImporterID: id, TrustScore: trust}, nil
}

func TestAssessTrustResolution(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(engine, stubIdentity{"IMP-GOOD": 100, "IMP-BAD": 0})
	ctx := context.Background()

	tests := []struct {
		name      string
		req       ShipmentRequest
		wantTrust float64
	}{
		{"explicit trust wins over identity", ShipmentRequest{ImporterID: "IMP-BAD", TrustScore: ptr(22)}, 22},
		{"resolved through identity store", ShipmentRequest{ImporterID: "IMP-GOOD"}, 100},
		{"low trust importer", ShipmentRequest{ImporterID: "IMP-BAD"}, 0},
		{"unknown importer is neutral", ShipmentRequest{ImporterID: "ghost"}, DefaultTrustScore},
		{"identity failure is neutral", ShipmentRequest{ImporterID: "broken"}, DefaultTrustScore},
		{"no importer is neutral", ShipmentRequest{}, DefaultTrustScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := svc.Assess(ctx, tt.req)
			assert.Equal(t, tt.wantTrust, d.TrustScore)
		})
	}
}

func TestAssessWithoutIdentityStore(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	d := NewService(engine, nil).Assess(context.Background(), ShipmentRequest{ImporterID: "IMP-1"})
	assert.Equal(t, DefaultTrustScore, d.TrustScore)
}
