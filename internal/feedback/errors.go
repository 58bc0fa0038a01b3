package feedback

import (
	"errors"

	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"
)

var (
	ErrInvalidReference      = errors.New("referenced event or club does not exist")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrMissingRequiredField  = errors.New("required field is missing")
	ErrUnexpectedField       = errors.New("field is not allowed for this rating")
	ErrContentTooLong        = errors.New("content exceeds the maximum length")
	ErrMissingResolutionType = errors.New("resolution type and notes are required")

	// ErrInvariantViolation marks a broken cross-entity invariant. It is a
	// data-integrity bug, not a user error, and is logged at error level
	// wherever it surfaces.
	ErrInvariantViolation = errors.New("feedback invariant violation")
)

// Code maps any pipeline error to the stable code the HTTP layer puts in
// the error envelope. Unrecognized errors are internal.
func Code(err error) string {
	switch {
	case errors.Is(err, reviewtokens.ErrNotFound),
		errors.Is(err, eventreviews.ErrNotFound),
		errors.Is(err, conflicts.ErrNotFound):
		return "not_found"
	case errors.Is(err, reviewtokens.ErrExpired):
		return "expired"
	case errors.Is(err, reviewtokens.ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, ErrMissingRequiredField):
		return "missing_required_field"
	case errors.Is(err, ErrUnexpectedField):
		return "unexpected_field"
	case errors.Is(err, ErrContentTooLong):
		return "content_too_long"
	case errors.Is(err, eventreviews.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, conflicts.ErrAlreadyClosed):
		return "conflict_already_closed"
	case errors.Is(err, ErrMissingResolutionType):
		return "missing_resolution_type"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant_violation"
	default:
		return "internal"
	}
}
