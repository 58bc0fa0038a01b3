package storage

import (
	"context"
	"fmt"

	"clubmatch/internal/database"
	"clubmatch/internal/domain/clubs"
	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool      *pgxpool.Pool // needed so WithFeedbackTx can open transactions
	Tokens    reviewtokens.Store
	Reviews   eventreviews.Store
	Conflicts conflicts.Store
	Clubs     clubs.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:      db,
		Tokens:    reviewtokens.NewRepository(db),
		Reviews:   eventreviews.NewRepository(db),
		Conflicts: conflicts.NewRepository(db),
		Clubs:     clubs.NewRepository(db),
	}
}

// FeedbackTx is a temporary, tx-scoped set of repos for the two write pairs
// that must commit together: review+conflict co-creation on a low rating,
// and conflict resolution driving the review to CONFLICT_RESOLVED.
type FeedbackTx struct {
	Tokens    reviewtokens.Store
	Reviews   eventreviews.Store
	Conflicts conflicts.Store
}

// WithFeedbackTx runs a feedback unit-of-work atomically.
func (c *Container) WithFeedbackTx(ctx context.Context, fn func(s *FeedbackTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container has no pool")
	}

	return database.WithTx(c.pool, ctx, func(tx pgx.Tx) error {
		s := &FeedbackTx{
			Tokens:    reviewtokens.NewRepository(tx),
			Reviews:   eventreviews.NewRepository(tx),
			Conflicts: conflicts.NewRepository(tx),
		}
		return fn(s)
	})
}
