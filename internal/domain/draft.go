package domain

import (
	"fmt"
	"time"
)

// DraftStatus describes where a draft is in its lifecycle.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusSubmitted DraftStatus = "submitted" // terminal
)

// Valid reports whether s is a known status.
func (s DraftStatus) Valid() bool {
	return s == DraftStatusDraft || s == DraftStatusSubmitted
}

// ValidDraftStatusTransition checks if a status transition is valid.
// Valid transitions: draft -> draft, draft -> submitted.
func ValidDraftStatusTransition(from, to DraftStatus) bool {
	switch from {
	case DraftStatusDraft:
		return to == DraftStatusDraft || to == DraftStatusSubmitted
	case DraftStatusSubmitted:
		return false
	default:
		return to == DraftStatusDraft
	}
}

// Action is the navigation requested with a step submission.
type Action string

const (
	ActionNext Action = "next"
	ActionBack Action = "back"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionNext || a == ActionBack
}

// Draft is one in-progress or completed wizard run.
type Draft struct {
	ID          int64
	Owner       int64
	Scope       int64
	Status      DraftStatus
	CurrentStep int
	Payload     Payload
	CreatedAt   time.Time
	ModifiedAt  time.Time
	Version     int64
}

// NewDraft creates an unsaved draft for owner in scope, positioned at step.
func NewDraft(owner, scope int64, step int) *Draft {
	now := time.Now().UTC()
	return &Draft{
		Owner:       owner,
		Scope:       scope,
		Status:      DraftStatusDraft,
		CurrentStep: step,
		Payload:     Payload{},
		CreatedAt:   now,
		ModifiedAt:  now,
		Version:     1,
	}
}

// IsSubmitted reports whether the draft reached its terminal status.
func (d *Draft) IsSubmitted() bool {
	return d.Status == DraftStatusSubmitted
}

// SetStatus transitions the draft to a new status.
func (d *Draft) SetStatus(status DraftStatus) error {
	if !ValidDraftStatusTransition(d.Status, status) {
		return fmt.Errorf("%w: draft %s -> %s", ErrInvalidState, d.Status, status)
	}
	d.Status = status
	return nil
}

// Touch updates the modification timestamp.
func (d *Draft) Touch() {
	d.ModifiedAt = time.Now().UTC()
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Payload = d.Payload.Clone()
	return &c
}
