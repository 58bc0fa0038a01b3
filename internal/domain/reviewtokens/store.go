package reviewtokens

import (
	"context"
	"errors"
	"time"

	"clubmatch/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, tokenHash string, token *Token) error
	Redeem(ctx context.Context, tokenHash string) (*Token, error)
	Validate(ctx context.Context, tokenHash string) (*Token, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, tokenHash string, token *Token) error {
	query := `
        INSERT INTO review_tokens (token_hash, event_id, reviewer_club_id, target_club_id, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, issued_at
    `
	return r.db.QueryRow(ctx, query,
		tokenHash,
		token.EventID,
		token.ReviewerClubID,
		token.TargetClubID,
		token.ExpiresAt,
	).Scan(&token.ID, &token.IssuedAt)
}

// Redeem marks the token used and returns it. The check and the write are a
// single conditional UPDATE, so two concurrent redemptions of the same token
// can never both succeed: the loser sees zero rows and gets classified below.
func (r *Repository) Redeem(ctx context.Context, tokenHash string) (*Token, error) {
	query := `
        UPDATE review_tokens
        SET redeemed_at = now()
        WHERE token_hash = $1
          AND redeemed_at IS NULL
          AND expires_at > now()
        RETURNING id, event_id, reviewer_club_id, target_club_id, issued_at, expires_at, redeemed_at
    `
	token := &Token{}
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.EventID,
		&token.ReviewerClubID,
		&token.TargetClubID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classify(ctx, tokenHash)
		}
		return nil, err
	}
	return token, nil
}

// Validate reports the token's state without consuming it. Used to render
// the submission form before the reviewer commits.
func (r *Repository) Validate(ctx context.Context, tokenHash string) (*Token, error) {
	token, err := r.get(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if !token.ExpiresAt.After(time.Now()) {
		return token, ErrExpired
	}
	if token.RedeemedAt != nil {
		return token, ErrAlreadyUsed
	}
	return token, nil
}

func (r *Repository) get(ctx context.Context, tokenHash string) (*Token, error) {
	query := `
        SELECT id, event_id, reviewer_club_id, target_club_id, issued_at, expires_at, redeemed_at
        FROM review_tokens
        WHERE token_hash = $1
    `
	token := &Token{}
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.EventID,
		&token.ReviewerClubID,
		&token.TargetClubID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

// classify explains a failed redemption. Expiry wins over prior redemption
// so an expired token always reads as expired, whatever its redeemed_at.
func (r *Repository) classify(ctx context.Context, tokenHash string) error {
	token, err := r.get(ctx, tokenHash)
	if err != nil {
		return err
	}
	if !token.ExpiresAt.After(time.Now()) {
		return ErrExpired
	}
	if token.RedeemedAt != nil {
		return ErrAlreadyUsed
	}
	// The conditional update matched nothing yet the row now looks
	// redeemable; only reachable if the row changed between the two
	// statements. Report the closest user-facing state.
	return ErrAlreadyUsed
}
