// Package feedback publishes officer overrides as training labels for the
// scoring model. Publishing is best-effort: the override log is the record of
// truth and a lost event never fails a submission.
package feedback

import (
	"context"
	"time"

	"clearance/internal/override/models"
	"clearance/internal/risk"
)

// Event is the training-feedback message for one override. An override means
// the automated lane was wrong, so LabelCorrect is always false and
// OfficerLabel carries the lane the officer chose.
type Event struct {
	OverrideID    int64     `json:"override_id"`
	ContainerID   string    `json:"container_id"`
	PredictedLane risk.Lane `json:"predicted_lane"`
	OfficerLabel  risk.Lane `json:"officer_label"`
	LabelCorrect  bool      `json:"label_correct"`
	OfficerID     string    `json:"officer_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent derives the feedback event for a persisted override.
func NewEvent(r models.Record) Event {
	return Event{
		OverrideID:    r.ID,
		ContainerID:   r.ContainerID,
		PredictedLane: r.FromLane,
		OfficerLabel:  r.ToLane,
		LabelCorrect:  false,
		OfficerID:     r.OfficerID,
		OccurredAt:    r.CreatedAt,
	}
}

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() {}
