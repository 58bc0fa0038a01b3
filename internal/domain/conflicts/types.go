package conflicts

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("conflict not found")
	ErrAlreadyClosed = errors.New("conflict is already closed")
)

type Status string

const (
	StatusOpen             Status = "OPEN"
	StatusInProgress       Status = "IN_PROGRESS"
	StatusAwaitingResponse Status = "AWAITING_RESPONSE"
	StatusResolved         Status = "RESOLVED"
	StatusDismissed        Status = "DISMISSED"
)

// Terminal reports whether s admits no further mutation.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// Investigative reports whether s is one of the three same-tier stages an
// admin may move between freely.
func (s Status) Investigative() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusAwaitingResponse:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ResolutionType records how a conflict was closed. DISMISSED here is a
// resolution outcome; it is distinct from the terminal status of the same
// name and either may appear without the other.
type ResolutionType string

const (
	ResolutionMediated      ResolutionType = "MEDIATED"
	ResolutionRefundIssued  ResolutionType = "REFUND_ISSUED"
	ResolutionApologyIssued ResolutionType = "APOLOGY_ISSUED"
	ResolutionNoAction      ResolutionType = "NO_ACTION"
	ResolutionWarningIssued ResolutionType = "WARNING_ISSUED"
	ResolutionDismissed     ResolutionType = "DISMISSED"
)

func ValidResolutionType(rt ResolutionType) bool {
	switch rt {
	case ResolutionMediated, ResolutionRefundIssued, ResolutionApologyIssued,
		ResolutionNoAction, ResolutionWarningIssued, ResolutionDismissed:
		return true
	}
	return false
}

type Conflict struct {
	ID       int64    `json:"id"`
	ReviewID int64    `json:"review_id"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`

	AdminNotes string `json:"admin_notes"`

	// Resolution fields are set together, exactly when status is terminal.
	ResolutionType  *ResolutionType `json:"resolution_type,omitempty"`
	ResolutionNotes *string         `json:"resolution_notes,omitempty"`
	ResolvedBy      *string         `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
