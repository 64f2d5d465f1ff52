package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and ledger adapters
// return these (optionally wrapped) so services can translate them into
// domain errors or absorb them as tier degradation:
// - ErrNotFound: the tier answered and holds no record for the key
// - ErrConflict: the tier already holds a record for the key
// - ErrUnavailable: the tier could not answer (timeout, transport, open circuit)
// - ErrInvalidState: the stored record is unusable (corrupt payload)
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
