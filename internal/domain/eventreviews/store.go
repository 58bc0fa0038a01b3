package eventreviews

import (
	"context"
	"errors"

	"clubmatch/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, reviewID int64) (*Review, error)
	UpdateStatus(ctx context.Context, reviewID int64, from, to Status, actor Role) error
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Review, int, error)
	ClubSummary(ctx context.Context, clubID int64) (*ClubSummary, error)
	ListApprovedByClub(ctx context.Context, clubID int64, limit, offset int) ([]Review, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
        INSERT INTO event_reviews
            (token_id, event_id, reviewer_club_id, target_club_id, rating,
             content, complaint, improvement_suggestion, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		review.TokenID,
		review.EventID,
		review.ReviewerClubID,
		review.TargetClubID,
		review.Rating,
		review.Content,
		review.Complaint,
		review.ImprovementSuggestion,
		review.Status,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := `
        SELECT id, token_id, event_id, reviewer_club_id, target_club_id, rating,
               content, complaint, improvement_suggestion, status, last_actor_role,
               created_at, updated_at
        FROM event_reviews
        WHERE id = $1
    `
	review := &Review{}
	err := r.db.QueryRow(ctx, query, reviewID).Scan(
		&review.ID,
		&review.TokenID,
		&review.EventID,
		&review.ReviewerClubID,
		&review.TargetClubID,
		&review.Rating,
		&review.Content,
		&review.Complaint,
		&review.ImprovementSuggestion,
		&review.Status,
		&review.LastActorRole,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

// UpdateStatus applies one state-machine transition as a conditional write.
// Zero rows affected means the review either moved already or never existed;
// the follow-up read tells the two apart.
func (r *Repository) UpdateStatus(ctx context.Context, reviewID int64, from, to Status, actor Role) error {
	if !CanTransition(from, to, actor) {
		return ErrInvalidTransition
	}

	query := `
        UPDATE event_reviews
        SET status = $1, last_actor_role = $2, updated_at = now()
        WHERE id = $3 AND status = $4
    `
	result, err := r.db.Exec(ctx, query, to, actor, reviewID, from)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		var current Status
		err := r.db.QueryRow(ctx, `SELECT status FROM event_reviews WHERE id = $1`, reviewID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Review, int, error) {
	query := `
        SELECT er.id, er.token_id, er.event_id, er.reviewer_club_id, er.target_club_id,
               er.rating, er.content, er.complaint, er.improvement_suggestion,
               er.status, er.last_actor_role, er.created_at, er.updated_at,
               c.name, COUNT(*) OVER() AS total
        FROM event_reviews er
        JOIN clubs c ON c.id = er.reviewer_club_id
        WHERE er.status = $1
        ORDER BY er.created_at ASC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []Review
	var total int
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.TokenID,
			&review.EventID,
			&review.ReviewerClubID,
			&review.TargetClubID,
			&review.Rating,
			&review.Content,
			&review.Complaint,
			&review.ImprovementSuggestion,
			&review.Status,
			&review.LastActorRole,
			&review.CreatedAt,
			&review.UpdatedAt,
			&review.ReviewerClubName,
			&total,
		)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	return reviews, total, nil
}
