package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clubmatch/internal/domain/clubs"
	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"
	"clubmatch/internal/domain/storage"
	"clubmatch/internal/notifications"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxRunner opens a feedback unit-of-work. *storage.Container implements it;
// tests swap in an in-memory runner.
type TxRunner interface {
	WithFeedbackTx(ctx context.Context, fn func(s *storage.FeedbackTx) error) error
}

// Service drives the whole feedback pipeline: token issuance and redemption,
// rating-driven validation, the dual-approval publication machine, and the
// conflict lifecycle.
type Service struct {
	tokens    reviewtokens.Store
	reviews   eventreviews.Store
	conflicts conflicts.Store
	clubs     clubs.Store
	tx        TxRunner
	notifier  notifications.Notifier
	logger    *zap.SugaredLogger
	tokenExp  time.Duration
}

func NewService(store *storage.Container, notifier notifications.Notifier, logger *zap.SugaredLogger, tokenExp time.Duration) *Service {
	return &Service{
		tokens:    store.Tokens,
		reviews:   store.Reviews,
		conflicts: store.Conflicts,
		clubs:     store.Clubs,
		tx:        store,
		notifier:  notifier,
		logger:    logger,
		tokenExp:  tokenExp,
	}
}

// IssueToken mints a single-use review invitation for one event/club pair.
// The returned plaintext token is handed to the reviewer out of band and is
// the only copy; the store keeps its hash.
func (s *Service) IssueToken(ctx context.Context, eventID, reviewerClubID, targetClubID int64) (string, *reviewtokens.Token, error) {
	if err := s.checkReferences(ctx, eventID, reviewerClubID, targetClubID); err != nil {
		return "", nil, err
	}

	plain := uuid.New().String()
	token := &reviewtokens.Token{
		EventID:        eventID,
		ReviewerClubID: reviewerClubID,
		TargetClubID:   targetClubID,
		ExpiresAt:      time.Now().Add(s.tokenExp),
	}
	if err := s.tokens.Create(ctx, reviewtokens.HashToken(plain), token); err != nil {
		return "", nil, err
	}

	s.notifier.ReviewInvited(ctx, token, plain)
	return plain, token, nil
}

func (s *Service) checkReferences(ctx context.Context, eventID int64, clubIDs ...int64) error {
	exists, err := s.clubs.EventExists(ctx, eventID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: event %d", ErrInvalidReference, eventID)
	}
	for _, clubID := range clubIDs {
		exists, err := s.clubs.ClubExists(ctx, clubID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: club %d", ErrInvalidReference, clubID)
		}
	}
	return nil
}

// TokenStatus reports a token's state without consuming it, so the caller
// can render or deny the submission form.
func (s *Service) TokenStatus(ctx context.Context, plainToken string) (*reviewtokens.Token, error) {
	return s.tokens.Validate(ctx, reviewtokens.HashToken(plainToken))
}

// SubmitReview validates the submission against the rating rule table, then
// consumes the token and writes the review — plus its conflict when the
// rating opens one — in a single transaction. Validation failures happen
// before redemption, so a rejected submission never burns the token.
func (s *Service) SubmitReview(ctx context.Context, plainToken string, in ReviewInput) (*eventreviews.Review, error) {
	rule, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	value := strings.TrimSpace(in.fieldValue(rule.Required))

	var review *eventreviews.Review
	var conflict *conflicts.Conflict

	err = s.tx.WithFeedbackTx(ctx, func(tx *storage.FeedbackTx) error {
		token, err := tx.Tokens.Redeem(ctx, reviewtokens.HashToken(plainToken))
		if err != nil {
			return err
		}

		review = &eventreviews.Review{
			TokenID:        token.ID,
			EventID:        token.EventID,
			ReviewerClubID: token.ReviewerClubID,
			TargetClubID:   token.TargetClubID,
			Rating:         in.Rating,
			Status:         rule.InitialStatus,
		}
		switch rule.Required {
		case FieldContent:
			review.Content = &value
		case FieldComplaint:
			review.Complaint = &value
		case FieldImprovementSuggestion:
			review.ImprovementSuggestion = &value
		}
		if err := tx.Reviews.Create(ctx, review); err != nil {
			return err
		}

		if rule.OpensConflict {
			conflict = &conflicts.Conflict{
				ReviewID: review.ID,
				Status:   conflicts.StatusOpen,
				Priority: conflicts.PriorityMedium,
			}
			if err := tx.Conflicts.Create(ctx, conflict); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if conflict != nil {
		s.notifier.DisputeOpened(ctx, review, conflict)
	}
	return review, nil
}

// ReviewDecision applies one approve/reject sign-off. The expected
// from-status comes from the actor's stage, and the store's conditional
// write is the only status check, so two admins racing on one review leave
// exactly one transition applied.
func (s *Service) ReviewDecision(ctx context.Context, reviewID int64, actor eventreviews.Role, approve bool) (*eventreviews.Review, error) {
	from, to, ok := eventreviews.DecisionFor(actor, approve)
	if !ok {
		return nil, fmt.Errorf("%w: role %q takes no publication decisions", eventreviews.ErrInvalidTransition, actor)
	}

	if err := s.reviews.UpdateStatus(ctx, reviewID, from, to, actor); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.Status == eventreviews.StatusApproved {
		s.notifier.ReviewPublished(ctx, review)
	}
	return review, nil
}

// GetReview loads one review, mainly so the HTTP layer can check a club
// admin is acting on their own club before forwarding a decision.
func (s *Service) GetReview(ctx context.Context, reviewID int64) (*eventreviews.Review, error) {
	return s.reviews.GetByID(ctx, reviewID)
}

// UpdateConflictInput is a same-tier edit; nil fields are untouched.
type UpdateConflictInput struct {
	Status     *conflicts.Status
	Priority   *conflicts.Priority
	AdminNotes *string
}

// UpdateConflict edits a conflict's investigation status, priority, or
// notes. Closing a conflict goes through ResolveConflict only.
func (s *Service) UpdateConflict(ctx context.Context, conflictID int64, in UpdateConflictInput) (*conflicts.Conflict, error) {
	if in.Status == nil && in.Priority == nil && in.AdminNotes == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrMissingRequiredField)
	}
	if in.Status != nil {
		if in.Status.Terminal() {
			return nil, fmt.Errorf("%w: use the resolution endpoint to close a conflict", ErrMissingResolutionType)
		}
		if !in.Status.Investigative() {
			return nil, fmt.Errorf("%w: status %q", ErrUnexpectedField, *in.Status)
		}
	}
	if in.Priority != nil && !conflicts.ValidPriority(*in.Priority) {
		return nil, fmt.Errorf("%w: priority %q", ErrUnexpectedField, *in.Priority)
	}

	return s.conflicts.Update(ctx, conflictID, conflicts.UpdateFields{
		Status:     in.Status,
		Priority:   in.Priority,
		AdminNotes: in.AdminNotes,
	})
}

// ResolveConflict closes a conflict and, in the same transaction, drives the
// linked review from CONFLICT_OPEN to CONFLICT_RESOLVED. A review that is
// not in CONFLICT_OPEN at that point means the co-creation invariant was
// broken somewhere: the whole unit rolls back and the condition is reported
// loudly instead of half-applied.
func (s *Service) ResolveConflict(ctx context.Context, conflictID int64, resType conflicts.ResolutionType, notes, resolvedBy string) (*conflicts.Conflict, *eventreviews.Review, error) {
	if !conflicts.ValidResolutionType(resType) || strings.TrimSpace(notes) == "" {
		return nil, nil, ErrMissingResolutionType
	}

	var conflict *conflicts.Conflict
	var review *eventreviews.Review

	err := s.tx.WithFeedbackTx(ctx, func(tx *storage.FeedbackTx) error {
		var err error
		conflict, err = tx.Conflicts.Resolve(ctx, conflictID, conflicts.Resolution{
			Type:       resType,
			Notes:      strings.TrimSpace(notes),
			ResolvedBy: resolvedBy,
		})
		if err != nil {
			return err
		}

		err = tx.Reviews.UpdateStatus(ctx, conflict.ReviewID,
			eventreviews.StatusConflictOpen, eventreviews.StatusConflictResolved, eventreviews.RoleSystem)
		if err != nil {
			if errors.Is(err, eventreviews.ErrInvalidTransition) || errors.Is(err, eventreviews.ErrNotFound) {
				s.logger.Errorw("conflict resolved but linked review not in CONFLICT_OPEN",
					"invariant", "conflict-review co-termination",
					"conflict_id", conflictID,
					"review_id", conflict.ReviewID,
					"error", err,
				)
				return fmt.Errorf("%w: review %d not in CONFLICT_OPEN", ErrInvariantViolation, conflict.ReviewID)
			}
			return err
		}

		review, err = tx.Reviews.GetByID(ctx, conflict.ReviewID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return conflict, review, nil
}

// ClubReviewSummary is the public read-only aggregate for one club plus its
// most recent published reviews.
func (s *Service) ClubReviewSummary(ctx context.Context, clubID int64, limit, offset int) (*eventreviews.ClubSummary, []eventreviews.Review, error) {
	exists, err := s.clubs.ClubExists(ctx, clubID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: club %d", ErrInvalidReference, clubID)
	}

	summary, err := s.reviews.ClubSummary(ctx, clubID)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.reviews.ListApprovedByClub(ctx, clubID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return summary, reviews, nil
}

// PendingReviews is the platform-admin moderation queue, oldest first.
func (s *Service) PendingReviews(ctx context.Context, limit, offset int) ([]eventreviews.Review, int, error) {
	return s.reviews.ListByStatus(ctx, eventreviews.StatusPending, limit, offset)
}

// OpenConflicts lists unresolved conflicts, highest priority first.
func (s *Service) OpenConflicts(ctx context.Context, priority *conflicts.Priority, limit, offset int) ([]conflicts.Conflict, int, error) {
	if priority != nil && !conflicts.ValidPriority(*priority) {
		return nil, 0, fmt.Errorf("%w: priority %q", ErrUnexpectedField, *priority)
	}
	return s.conflicts.ListOpen(ctx, priority, limit, offset)
}
