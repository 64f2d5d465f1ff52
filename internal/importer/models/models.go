package models

import (
	"strings"
	"time"

	dErrors "clearance/pkg/domain-errors"
)

// Profile is the importer's trust record. History slices are append-only.
type Profile struct {
	ImporterID       string           `json:"importer_id"`
	RegistrationDate time.Time        `json:"registration_date"`
	YearsActive      int              `json:"years_active"`
	AEOTier          int              `json:"aeo_tier"`
	PriorViolations  int              `json:"prior_violations"`
	CleanInspections int              `json:"clean_inspections"`
	AEOCertificates  []AEOCertificate `json:"aeo_certificates"`
	ViolationHistory []Violation      `json:"violation_history"`
	InspectionLogs   []Inspection     `json:"inspection_logs"`
	TrustScore       float64          `json:"trust_score"`
	LastUpdated      time.Time        `json:"last_updated"`
}

// Violation is a recorded customs violation. Immutable once appended.
type Violation struct {
	ViolationID string    `json:"violation_id"`
	Description string    `json:"description"`
	Severity    int       `json:"severity"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// InspectionOutcome is the result of a physical inspection.
type InspectionOutcome string

const (
	OutcomeClean       InspectionOutcome = "CLEAN"
	OutcomeDiscrepancy InspectionOutcome = "DISCREPANCY"
	OutcomeSeizure     InspectionOutcome = "SEIZURE"
)

// IsValid reports whether o is a known outcome.
func (o InspectionOutcome) IsValid() bool {
	switch o {
	case OutcomeClean, OutcomeDiscrepancy, OutcomeSeizure:
		return true
	}
	return false
}

// Inspection is a logged inspection of one of the importer's shipments.
type Inspection struct {
	InspectionID string            `json:"inspection_id"`
	Outcome      InspectionOutcome `json:"outcome"`
	InspectorID  string            `json:"inspector_id,omitempty"`
	InspectedAt  time.Time         `json:"inspected_at"`
}

// AEOCertificate grants an Authorized Economic Operator tier.
type AEOCertificate struct {
	CertificateID string    `json:"certificate_id"`
	Tier          int       `json:"tier"`
	IssuedBy      string    `json:"issued_by,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
}

const (
	MinSeverity = 1
	MaxSeverity = 5
	MaxAEOTier  = 3
)

// Registration carries the initial attributes of a new importer.
type Registration struct {
	ImporterID       string
	YearsActive      int
	AEOTier          int
	Violations       int
	CleanInspections int
}

// Validate checks the registration attributes.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.ImporterID) == "" {
		return dErrors.New(dErrors.CodeValidation, "importer_id is required")
	}
	if r.YearsActive < 0 || r.Violations < 0 || r.CleanInspections < 0 {
		return dErrors.New(dErrors.CodeValidation, "counts must be non-negative")
	}
	if r.AEOTier < 0 || r.AEOTier > MaxAEOTier {
		return dErrors.New(dErrors.CodeValidation, "aeo_tier must be between 0 and 3")
	}
	return nil
}

// NewProfile builds a fresh profile with its trust score computed.
func NewProfile(r Registration, now time.Time) *Profile {
	p := &Profile{
		ImporterID:       r.ImporterID,
		RegistrationDate: now,
		YearsActive:      r.YearsActive,
		AEOTier:          r.AEOTier,
		PriorViolations:  r.Violations,
		CleanInspections: r.CleanInspections,
		AEOCertificates:  []AEOCertificate{},
		ViolationHistory: []Violation{},
		InspectionLogs:   []Inspection{},
		LastUpdated:      now,
	}
	p.Recompute()
	return p
}

// Validate checks a violation before it is appended.
func (v Violation) Validate() error {
	if strings.TrimSpace(v.ViolationID) == "" {
		return dErrors.New(dErrors.CodeValidation, "violation_id is required")
	}
	if v.Severity < MinSeverity || v.Severity > MaxSeverity {
		return dErrors.New(dErrors.CodeValidation, "severity must be between 1 and 5")
	}
	return nil
}

// Validate checks an inspection before it is appended.
func (i Inspection) Validate() error {
	if strings.TrimSpace(i.InspectionID) == "" {
		return dErrors.New(dErrors.CodeValidation, "inspection_id is required")
	}
	if !i.Outcome.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "outcome must be CLEAN, DISCREPANCY or SEIZURE")
	}
	return nil
}

// Validate checks a certificate before it is appended.
func (c AEOCertificate) Validate() error {
	if strings.TrimSpace(c.CertificateID) == "" {
		return dErrors.New(dErrors.CodeValidation, "certificate_id is required")
	}
	if c.Tier < 1 || c.Tier > MaxAEOTier {
		return dErrors.New(dErrors.CodeValidation, "tier must be between 1 and 3")
	}
	if !c.ExpiresAt.IsZero() && !c.IssuedAt.IsZero() && !c.ExpiresAt.After(c.IssuedAt) {
		return dErrors.New(dErrors.CodeValidation, "expires_at must be after issued_at")
	}
	return nil
}

// AppendViolation adds v unless its ID is already recorded.
func (p *Profile) AppendViolation(v Violation, now time.Time) error {
	for _, existing := range p.ViolationHistory {
		if existing.ViolationID == v.ViolationID {
			return dErrors.New(dErrors.CodeValidation, "violation "+v.ViolationID+" already recorded")
		}
	}
	if v.RecordedAt.IsZero() {
		v.RecordedAt = now
	}
	p.ViolationHistory = append(p.ViolationHistory, v)
	p.touch(now)
	return nil
}

// AppendInspection adds i unless its ID is already logged.
func (p *Profile) AppendInspection(i Inspection, now time.Time) error {
	for _, existing := range p.InspectionLogs {
		if existing.InspectionID == i.InspectionID {
			return dErrors.New(dErrors.CodeValidation, "inspection "+i.InspectionID+" already logged")
		}
	}
	if i.InspectedAt.IsZero() {
		i.InspectedAt = now
	}
	p.InspectionLogs = append(p.InspectionLogs, i)
	p.touch(now)
	return nil
}

// AppendCertificate adds c unless its ID is already held.
func (p *Profile) AppendCertificate(c AEOCertificate, now time.Time) error {
	for _, existing := range p.AEOCertificates {
		if existing.CertificateID == c.CertificateID {
			return dErrors.New(dErrors.CodeValidation, "certificate "+c.CertificateID+" already held")
		}
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = now
	}
	p.AEOCertificates = append(p.AEOCertificates, c)
	p.touch(now)
	return nil
}

func (p *Profile) touch(now time.Time) {
	p.LastUpdated = now
	p.Recompute()
}

// Clone returns a deep copy so callers never share history slices.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.AEOCertificates = append([]AEOCertificate{}, p.AEOCertificates...)
	c.ViolationHistory = append([]Violation{}, p.ViolationHistory...)
	c.InspectionLogs = append([]Inspection{}, p.InspectionLogs...)
	return &c
}
