package notifications

import (
	"context"

	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"
)

// Notifier is the fire-and-forget side-effect hook of the publication state
// machine. Implementations must never fail a transition: delivery problems
// are logged, not returned.
type Notifier interface {
	// ReviewInvited fires when a token is issued. The plaintext token
	// travels only here; it is never stored.
	ReviewInvited(ctx context.Context, token *reviewtokens.Token, plainToken string)
	// ReviewPublished fires when a review enters APPROVED.
	ReviewPublished(ctx context.Context, review *eventreviews.Review)
	// DisputeOpened fires when a review enters CONFLICT_OPEN, addressed to
	// both clubs and the platform admins.
	DisputeOpened(ctx context.Context, review *eventreviews.Review, conflict *conflicts.Conflict)
}
