package conflicts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clubmatch/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, conflict *Conflict) error
	GetByID(ctx context.Context, conflictID int64) (*Conflict, error)
	Update(ctx context.Context, conflictID int64, updates UpdateFields) (*Conflict, error)
	Resolve(ctx context.Context, conflictID int64, res Resolution) (*Conflict, error)
	ListOpen(ctx context.Context, priority *Priority, limit, offset int) ([]Conflict, int, error)
}

// UpdateFields is a same-tier edit: investigation status, priority, notes.
// Nil fields are left alone.
type UpdateFields struct {
	Status     *Status
	Priority   *Priority
	AdminNotes *string
}

// Resolution closes a conflict. Terminal status is derived from the
// resolution type: DISMISSED dismisses, everything else resolves.
type Resolution struct {
	Type       ResolutionType
	Notes      string
	ResolvedBy string
}

func (res Resolution) status() Status {
	if res.Type == ResolutionDismissed {
		return StatusDismissed
	}
	return StatusResolved
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, conflict *Conflict) error {
	query := `
        INSERT INTO conflicts (review_id, status, priority, admin_notes)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		conflict.ReviewID,
		conflict.Status,
		conflict.Priority,
		conflict.AdminNotes,
	).Scan(&conflict.ID, &conflict.CreatedAt, &conflict.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, conflictID int64) (*Conflict, error) {
	query := selectConflict + ` WHERE id = $1`
	conflict, err := scanConflict(r.db.QueryRow(ctx, query, conflictID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conflict, nil
}

// Update applies a same-tier edit. The non-terminal guard sits in the WHERE
// clause, so racing a resolution can never reopen a closed conflict.
func (r *Repository) Update(ctx context.Context, conflictID int64, updates UpdateFields) (*Conflict, error) {
	set := []string{"updated_at = now()"}
	args := []any{conflictID}

	if updates.Status != nil {
		args = append(args, *updates.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if updates.Priority != nil {
		args = append(args, *updates.Priority)
		set = append(set, fmt.Sprintf("priority = $%d", len(args)))
	}
	if updates.AdminNotes != nil {
		args = append(args, *updates.AdminNotes)
		set = append(set, fmt.Sprintf("admin_notes = $%d", len(args)))
	}

	query := fmt.Sprintf(`
        UPDATE conflicts
        SET %s
        WHERE id = $1 AND status NOT IN ('RESOLVED', 'DISMISSED')
        RETURNING %s
    `, strings.Join(set, ", "), conflictColumns)

	conflict, err := scanConflict(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyClosed(ctx, conflictID)
		}
		return nil, err
	}
	return conflict, nil
}

// Resolve closes the conflict with its resolution fields in one conditional
// write. The caller wraps it in the same transaction that moves the linked
// review out of CONFLICT_OPEN.
func (r *Repository) Resolve(ctx context.Context, conflictID int64, res Resolution) (*Conflict, error) {
	query := `
        UPDATE conflicts
        SET status = $2,
            resolution_type = $3,
            resolution_notes = $4,
            resolved_by = $5,
            resolved_at = now(),
            updated_at = now()
        WHERE id = $1 AND status NOT IN ('RESOLVED', 'DISMISSED')
        RETURNING ` + conflictColumns
	conflict, err := scanConflict(r.db.QueryRow(ctx, query,
		conflictID, res.status(), res.Type, res.Notes, res.ResolvedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyClosed(ctx, conflictID)
		}
		return nil, err
	}
	return conflict, nil
}

func (r *Repository) ListOpen(ctx context.Context, priority *Priority, limit, offset int) ([]Conflict, int, error) {
	rows, err := r.db.Query(ctx, listOpenQuery, priority, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Conflict
	var total int
	for rows.Next() {
		var c Conflict
		err := rows.Scan(
			&c.ID, &c.ReviewID, &c.Status, &c.Priority, &c.AdminNotes,
			&c.ResolutionType, &c.ResolutionNotes, &c.ResolvedBy, &c.ResolvedAt,
			&c.CreatedAt, &c.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, nil
}

// classifyClosed explains a guarded write that matched nothing.
func (r *Repository) classifyClosed(ctx context.Context, conflictID int64) error {
	var status Status
	err := r.db.QueryRow(ctx, `SELECT status FROM conflicts WHERE id = $1`, conflictID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyClosed
}

const conflictColumns = `id, review_id, status, priority, admin_notes,
            resolution_type, resolution_notes, resolved_by, resolved_at,
            created_at, updated_at`

const selectConflict = `SELECT ` + conflictColumns + ` FROM conflicts`

const listOpenQuery = `
        SELECT ` + conflictColumns + `, COUNT(*) OVER() AS total
        FROM conflicts
        WHERE status NOT IN ('RESOLVED', 'DISMISSED')
          AND ($1::text IS NULL OR priority = $1::text)
        ORDER BY
            CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END,
            created_at ASC
        LIMIT $2 OFFSET $3
    `

func scanConflict(row pgx.Row) (*Conflict, error) {
	c := &Conflict{}
	err := row.Scan(
		&c.ID, &c.ReviewID, &c.Status, &c.Priority, &c.AdminNotes,
		&c.ResolutionType, &c.ResolutionNotes, &c.ResolvedBy, &c.ResolvedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
