package eventreviews

import "context"

// ClubSummary is the public aggregate for one target club. Total and average
// cover APPROVED reviews only; the open counts exist for admin dashboards.
type ClubSummary struct {
	ClubID          int64       `json:"club_id"`
	Total           int         `json:"total"`
	AverageRating   float64     `json:"average_rating"`
	RatingBreakdown map[int]int `json:"rating_breakdown"`
	PendingCount    int         `json:"pending_count"`
	ConflictCount   int         `json:"conflict_count"`
}

func (r *Repository) ClubSummary(ctx context.Context, clubID int64) (*ClubSummary, error) {
	query := `
        SELECT
            COUNT(id) FILTER (WHERE status = 'APPROVED') AS total,
            COALESCE(AVG(rating) FILTER (WHERE status = 'APPROVED'), 0) AS average_rating,
            COUNT(id) FILTER (WHERE status IN ('PENDING', 'SUPER_ADMIN_APPROVED')) AS pending,
            COUNT(id) FILTER (WHERE status = 'CONFLICT_OPEN') AS in_conflict
        FROM event_reviews
        WHERE target_club_id = $1
    `
	summary := &ClubSummary{
		ClubID:          clubID,
		RatingBreakdown: make(map[int]int),
	}
	err := r.db.QueryRow(ctx, query, clubID).Scan(
		&summary.Total,
		&summary.AverageRating,
		&summary.PendingCount,
		&summary.ConflictCount,
	)
	if err != nil {
		return nil, err
	}

	breakdown := `
        SELECT rating, COUNT(id)
        FROM event_reviews
        WHERE target_club_id = $1 AND status = 'APPROVED'
        GROUP BY rating
    `
	rows, err := r.db.Query(ctx, breakdown, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		summary.RatingBreakdown[rating] = count
	}
	return summary, nil
}

func (r *Repository) ListApprovedByClub(ctx context.Context, clubID int64, limit, offset int) ([]Review, error) {
	query := `
        SELECT er.id, er.event_id, er.reviewer_club_id, er.target_club_id,
               er.rating, er.content, er.created_at, c.name
        FROM event_reviews er
        JOIN clubs c ON c.id = er.reviewer_club_id
        WHERE er.target_club_id = $1 AND er.status = 'APPROVED'
        ORDER BY er.created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, clubID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		review := Review{Status: StatusApproved}
		err := rows.Scan(
			&review.ID,
			&review.EventID,
			&review.ReviewerClubID,
			&review.TargetClubID,
			&review.Rating,
			&review.Content,
			&review.CreatedAt,
			&review.ReviewerClubName,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
