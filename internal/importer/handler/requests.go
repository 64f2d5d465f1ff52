package handler

import (
	"strings"
	"time"

	"clearance/internal/importer/models"
	dErrors "clearance/pkg/domain-errors"
)

const maxIDLength = 64

// RegisterRequest is the body of POST /importer.
type RegisterRequest struct {
	ImporterID       string `json:"importer_id"`
	YearsActive      int    `json:"years_active"`
	AEOTier          int    `json:"aeo_tier"`
	Violations       int    `json:"violations"`
	CleanInspections int    `json:"clean_inspections"`
}

// Validate implements httputil.Validatable.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ImporterID = strings.TrimSpace(r.ImporterID)
	if len(r.ImporterID) > maxIDLength {
		return dErrors.New(dErrors.CodeValidation, "importer_id must be at most 64 characters")
	}
	return r.Registration().Validate()
}

// Registration converts the request to its domain form.
func (r *RegisterRequest) Registration() models.Registration {
	return models.Registration{
		ImporterID:       r.ImporterID,
		YearsActive:      r.YearsActive,
		AEOTier:          r.AEOTier,
		Violations:       r.Violations,
		CleanInspections: r.CleanInspections,
	}
}

// ViolationRequest is the body of POST /importer/{key}/violation.
type ViolationRequest struct {
	ViolationID string `json:"violation_id"`
	Description string `json:"description"`
	Severity    int    `json:"severity"`
}

// Validate implements httputil.Validatable.
func (r *ViolationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ViolationID = strings.TrimSpace(r.ViolationID)
	r.Description = strings.TrimSpace(r.Description)
	return r.Violation().Validate()
}

// Violation converts the request to its domain form.
func (r *ViolationRequest) Violation() models.Violation {
	return models.Violation{
		ViolationID: r.ViolationID,
		Description: r.Description,
		Severity:    r.Severity,
	}
}

// InspectionRequest is the body of POST /importer/{key}/inspection.
type InspectionRequest struct {
	InspectionID string    `json:"inspection_id"`
	Outcome      string    `json:"outcome"`
	InspectorID  string    `json:"inspector_id"`
	InspectedAt  time.Time `json:"inspected_at"`
}

// Validate implements httputil.Validatable.
func (r *InspectionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.InspectionID = strings.TrimSpace(r.InspectionID)
	r.Outcome = strings.ToUpper(strings.TrimSpace(r.Outcome))
	return r.Inspection().Validate()
}

// Inspection converts the request to its domain form.
func (r *InspectionRequest) Inspection() models.Inspection {
	return models.Inspection{
		InspectionID: r.InspectionID,
		Outcome:      models.InspectionOutcome(r.Outcome),
		InspectorID:  strings.TrimSpace(r.InspectorID),
		InspectedAt:  r.InspectedAt,
	}
}

// CertificateRequest is the body of POST /importer/{key}/certificate.
type CertificateRequest struct {
	CertificateID string    `json:"certificate_id"`
	Tier          int       `json:"tier"`
	IssuedBy      string    `json:"issued_by"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Validate implements httputil.Validatable.
func (r *CertificateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CertificateID = strings.TrimSpace(r.CertificateID)
	return r.Certificate().Validate()
}

// Certificate converts the request to its domain form.
func (r *CertificateRequest) Certificate() models.AEOCertificate {
	return models.AEOCertificate{
		CertificateID: r.CertificateID,
		Tier:          r.Tier,
		IssuedBy:      strings.TrimSpace(r.IssuedBy),
		IssuedAt:      r.IssuedAt,
		ExpiresAt:     r.ExpiresAt,
	}
}
