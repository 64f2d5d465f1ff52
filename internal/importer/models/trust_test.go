package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clearance/pkg/domain-errors"
)

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name string
		in   TrustInputs
		want float64
	}{
		{"zero history", TrustInputs{}, 0},
		{"new operator", TrustInputs{YearsActive: 2, CleanInspections: 4}, 22},
		{"clamped high", TrustInputs{YearsActive: 7, AEOTier: 1, CleanInspections: 20}, 100},
		{"clamped low", TrustInputs{YearsActive: 1, Violations: 4}, 0},
		{"mixed", TrustInputs{YearsActive: 3, AEOTier: 1, Violations: 2, CleanInspections: 9}, 24.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TrustScore(tt.in), 1e-9)
		})
	}
}

func FuzzTrustScoreBoundedAndDeterministic(f *testing.F) {
	f.Add(0, 0, 0, 0)
	f.Add(7, 1, 0, 20)
	f.Add(1, 0, 9, 0)
	f.Fuzz(func(t *testing.T, years, tier, violations, clean int) {
		if years < 0 || tier < 0 || violations < 0 || clean < 0 {
			t.Skip()
		}
		in := TrustInputs{YearsActive: years, AEOTier: tier, Violations: violations, CleanInspections: clean}
		first := TrustScore(in)
		if first < 0 || first > 100 {
			t.Fatalf("score %v out of bounds for %+v", first, in)
		}
		if again := TrustScore(in); again != first {
			t.Fatalf("non-deterministic score: %v then %v", first, again)
		}
	})
}

func TestProfileTrustInputsIncludeHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := NewProfile(Registration{ImporterID: "IMP-1", YearsActive: 3, Violations: 1, CleanInspections: 2}, now)
	assert.InDelta(t, 16.0, p.TrustScore, 1e-9)

	require.NoError(t, p.AppendCertificate(AEOCertificate{CertificateID: "C-1", Tier: 2}, now))
	require.NoError(t, p.AppendInspection(Inspection{InspectionID: "I-1", Outcome: OutcomeClean}, now))
	require.NoError(t, p.AppendInspection(Inspection{InspectionID: "I-2", Outcome: OutcomeSeizure}, now))
	require.NoError(t, p.AppendViolation(Violation{ViolationID: "V-1", Severity: 3}, now))

	in := p.TrustInputs()
	assert.Equal(t, TrustInputs{YearsActive: 3, AEOTier: 2, Violations: 2, CleanInspections: 3}, in)
	assert.InDelta(t, 41.5, p.TrustScore, 1e-9)
}

func TestAppendRejectsDuplicateIDs(t *testing.T) {
	now := time.Now()
	p := NewProfile(Registration{ImporterID: "IMP-2", YearsActive: 5}, now)

	require.NoError(t, p.AppendViolation(Violation{ViolationID: "V-1", Severity: 2}, now))
	err := p.AppendViolation(Violation{ViolationID: "V-1", Severity: 4}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Len(t, p.ViolationHistory, 1)
	assert.Equal(t, 2, p.ViolationHistory[0].Severity)

	require.NoError(t, p.AppendInspection(Inspection{InspectionID: "I-1", Outcome: OutcomeClean}, now))
	assert.Error(t, p.AppendInspection(Inspection{InspectionID: "I-1", Outcome: OutcomeClean}, now))

	require.NoError(t, p.AppendCertificate(AEOCertificate{CertificateID: "C-1", Tier: 1}, now))
	assert.Error(t, p.AppendCertificate(AEOCertificate{CertificateID: "C-1", Tier: 3}, now))
}

func TestValidation(t *testing.T) {
	assert.Error(t, Registration{}.Validate())
	assert.Error(t, Registration{ImporterID: "X", YearsActive: -1}.Validate())
	assert.Error(t, Registration{ImporterID: "X", AEOTier: 4}.Validate())
	assert.NoError(t, Registration{ImporterID: "X", YearsActive: 7, AEOTier: 1, CleanInspections: 20}.Validate())

	assert.Error(t, Violation{ViolationID: "V", Severity: 0}.Validate())
	assert.Error(t, Violation{ViolationID: "V", Severity: 6}.Validate())
	assert.Error(t, Violation{Severity: 3}.Validate())
	assert.NoError(t, Violation{ViolationID: "V", Severity: 5}.Validate())

	assert.Error(t, Inspection{InspectionID: "I", Outcome: "MAYBE"}.Validate())
	assert.NoError(t, Inspection{InspectionID: "I", Outcome: OutcomeDiscrepancy}.Validate())

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Error(t, AEOCertificate{CertificateID: "C", Tier: 1, IssuedAt: issued, ExpiresAt: issued}.Validate())
	assert.NoError(t, AEOCertificate{CertificateID: "C", Tier: 3, IssuedAt: issued, ExpiresAt: issued.AddDate(1, 0, 0)}.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	p := NewProfile(Registration{ImporterID: "IMP-3"}, now)
	require.NoError(t, p.AppendViolation(Violation{ViolationID: "V-1", Severity: 1}, now))

	c := p.Clone()
	require.NoError(t, c.AppendViolation(Violation{ViolationID: "V-2", Severity: 1}, now))
	assert.Len(t, p.ViolationHistory, 1)
	assert.Len(t, c.ViolationHistory, 2)
}
