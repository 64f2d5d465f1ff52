// Package ledger provides the ledger tier of the importer identity store.
//
// The ledger is the authoritative importer registry. It may be unreachable;
// every implementation reports that as sentinel.ErrUnavailable so callers can
// fall through to the next tier.
package ledger

import (
	"context"
	"fmt"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

// Unavailable is the ledger used when no ledger endpoint is configured. Every
// call reports the tier as unreachable. The identity store drops it from the
// tier chain altogether, see Configured.
type Unavailable struct{}

// Configured reports false: no ledger endpoint exists.
func (Unavailable) Configured() bool { return false }

func (Unavailable) Query(context.Context, string) (*models.Profile, error) {
	return nil, errUnconfigured
}

func (Unavailable) Register(context.Context, *models.Profile) error {
	return errUnconfigured
}

func (Unavailable) AddViolation(context.Context, string, models.Violation) error {
	return errUnconfigured
}

func (Unavailable) LogInspection(context.Context, string, models.Inspection) error {
	return errUnconfigured
}

func (Unavailable) AddCertificate(context.Context, string, models.AEOCertificate) error {
	return errUnconfigured
}

var errUnconfigured = fmt.Errorf("ledger not configured: %w", sentinel.ErrUnavailable)
