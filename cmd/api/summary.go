package main

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"clubmatch/internal/params"

	"github.com/go-chi/chi/v5"
)

// clubReviewSummaryHandler is the public read-only aggregation: counts,
// average, per-rating breakdown and the latest published reviews for one
// club. It never mutates anything and tolerates slightly stale counts.
func (app *application) clubReviewSummaryHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid club ID"))
		return
	}

	p := params.ParsePagination(r.URL.Query())

	summary, reviews, err := app.feedback.ClubReviewSummary(r.Context(), clubID, p.Limit, p.Offset)
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}
	p.ComputeMeta(summary.Total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"total":            summary.Total,
		"average_rating":   math.Round(summary.AverageRating*10) / 10,
		"rating_breakdown": summary.RatingBreakdown,
		"pending_count":    summary.PendingCount,
		"conflict_count":   summary.ConflictCount,
		"reviews":          reviews,
		"pagination":       p,
	})
}
