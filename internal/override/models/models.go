// Package models defines officer lane overrides.
package models

import (
	"strings"
	"time"

	"clearance/internal/risk"
	dErrors "clearance/pkg/domain-errors"
)

// Record is one accepted override. Records are append-only: a later
// override for the same shipment supersedes but never replaces an earlier one.
type Record struct {
	ID          int64     `json:"id"`
	OfficerID   string    `json:"officer_id"`
	ContainerID string    `json:"container_id"`
	FromLane    risk.Lane `json:"from_lane"`
	ToLane      risk.Lane `json:"to_lane"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is an officer's request to move a shipment to another lane.
type Submission struct {
	ContainerID string
	OfficerID   string
	FromLane    risk.Lane
	ToLane      risk.Lane
	Reason      string
}

// Validate normalizes the submission and enforces the override rules: a
// reason is mandatory and the lane must actually change.
func (s *Submission) Validate() error {
	s.ContainerID = strings.TrimSpace(s.ContainerID)
	s.OfficerID = strings.TrimSpace(s.OfficerID)
	s.Reason = strings.TrimSpace(s.Reason)

	if s.ContainerID == "" {
		return dErrors.New(dErrors.CodeValidation, "container_id is required")
	}
	if s.OfficerID == "" {
		return dErrors.New(dErrors.CodeValidation, "officer_id is required")
	}
	from, err := risk.ParseLane(string(s.FromLane))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "from_lane must be GREEN, YELLOW or RED")
	}
	to, err := risk.ParseLane(string(s.ToLane))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "to_lane must be GREEN, YELLOW or RED")
	}
	s.FromLane, s.ToLane = from, to

	if s.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "override reason is required")
	}
	if s.FromLane == s.ToLane {
		return dErrors.New(dErrors.CodeValidation, "override must change the lane")
	}
	return nil
}

// Record builds the record to persist; the store assigns the ID.
func (s Submission) Record(now time.Time) *Record {
	return &Record{
		OfficerID:   s.OfficerID,
		ContainerID: s.ContainerID,
		FromLane:    s.FromLane,
		ToLane:      s.ToLane,
		Reason:      s.Reason,
		CreatedAt:   now,
	}
}
