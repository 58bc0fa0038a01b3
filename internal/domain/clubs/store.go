package clubs

import (
	"context"

	"clubmatch/internal/infra/dbx"
)

// Store is the read-only window onto the clubs/events tables. Those tables
// belong to the marketplace CRUD side; the feedback pipeline only checks
// that references exist and looks up notification recipients.
type Store interface {
	ClubExists(ctx context.Context, clubID int64) (bool, error)
	ClubName(ctx context.Context, clubID int64) (string, error)
	EventExists(ctx context.Context, eventID int64) (bool, error)
	AdminEmails(ctx context.Context, clubID int64) ([]string, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) ClubExists(ctx context.Context, clubID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM clubs WHERE id = $1)`
	err := r.db.QueryRow(ctx, query, clubID).Scan(&exists)
	return exists, err
}

func (r *Repository) ClubName(ctx context.Context, clubID int64) (string, error) {
	var name string
	query := `SELECT name FROM clubs WHERE id = $1`
	err := r.db.QueryRow(ctx, query, clubID).Scan(&name)
	return name, err
}

func (r *Repository) EventExists(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	err := r.db.QueryRow(ctx, query, eventID).Scan(&exists)
	return exists, err
}

func (r *Repository) AdminEmails(ctx context.Context, clubID int64) ([]string, error) {
	query := `
        SELECT u.email
        FROM users u
        JOIN club_admins ca ON ca.user_id = u.id
        WHERE ca.club_id = $1
    `
	rows, err := r.db.Query(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, nil
}
