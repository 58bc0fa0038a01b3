package eventreviews

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("review not found")
	ErrInvalidTransition = errors.New("review is not in the expected status")
)

type Status string

const (
	StatusPending            Status = "PENDING"
	StatusSuperAdminApproved Status = "SUPER_ADMIN_APPROVED"
	StatusApproved           Status = "APPROVED"
	StatusRejected           Status = "REJECTED"
	StatusConflictOpen       Status = "CONFLICT_OPEN"
	StatusConflictResolved   Status = "CONFLICT_RESOLVED"
)

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusConflictResolved:
		return true
	}
	return false
}

// Role identifies who performed a transition. The caller's authorization
// layer establishes it; the state machine only checks and records it.
type Role string

const (
	RolePlatformAdmin Role = "platform_admin"
	RoleClubAdmin     Role = "club_admin"
	RoleSystem        Role = "system"
)

type Review struct {
	ID             int64  `json:"id"`
	TokenID        int64  `json:"token_id"`
	EventID        int64  `json:"event_id"`
	ReviewerClubID int64  `json:"reviewer_club_id"`
	TargetClubID   int64  `json:"target_club_id"`
	Rating         int    `json:"rating"` // 1-5

	// Exactly one of the three is set, decided by the rating bucket.
	Content               *string `json:"content,omitempty"`
	Complaint             *string `json:"complaint,omitempty"`
	ImprovementSuggestion *string `json:"improvement_suggestion,omitempty"`

	Status        Status    `json:"status"`
	LastActorRole *Role     `json:"last_actor_role,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Joined fields
	ReviewerClubName string `json:"reviewer_club_name,omitempty"`
}
