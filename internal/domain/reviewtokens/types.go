package reviewtokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("review token not found")
	ErrExpired     = errors.New("review token has expired")
	ErrAlreadyUsed = errors.New("review token was already used")
)

// Token is a single-use invitation to review one event/club pair.
// Only the sha256 of the token ever hits the database; the plaintext
// uuid is handed to the reviewer out of band and never stored.
type Token struct {
	ID             int64      `json:"id"`
	EventID        int64      `json:"event_id"`
	ReviewerClubID int64      `json:"reviewer_club_id"`
	TargetClubID   int64      `json:"target_club_id"`
	IssuedAt       time.Time  `json:"issued_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty"`
}

// HashToken maps a plaintext token to its stored form.
func HashToken(plain string) string {
	hash := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(hash[:])
}
