package main

import (
	"errors"
	"net/http"
	"strconv"

	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/feedback"
	"clubmatch/internal/params"

	"github.com/go-chi/chi/v5"
)

type submitReviewPayload struct {
	Token                 string `json:"token" validate:"required"`
	Rating                int    `json:"rating" validate:"required,min=1,max=5"`
	Content               string `json:"content" validate:"omitempty,max=500"`
	Complaint             string `json:"complaint" validate:"omitempty"`
	ImprovementSuggestion string `json:"improvement_suggestion" validate:"omitempty"`
}

// submitReviewHandler redeems the token and creates the review in one shot.
// Which text field must be present is decided by the rating alone; a
// submission that fails validation leaves the token untouched.
func (app *application) submitReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload submitReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.feedback.SubmitReview(r.Context(), payload.Token, feedback.ReviewInput{
		Rating:                payload.Rating,
		Content:               payload.Content,
		Complaint:             payload.Complaint,
		ImprovementSuggestion: payload.ImprovementSuggestion,
	})
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]any{
		"review_id": review.ID,
		"status":    review.Status,
	})
}

type reviewDecisionPayload struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// reviewDecisionHandler applies one stage of the dual approval. Platform
// admins act on PENDING reviews, the target club's admin on
// SUPER_ADMIN_APPROVED ones; the service's conditional write rejects
// anything else as an invalid transition.
func (app *application) reviewDecisionHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	var payload reviewDecisionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role := eventreviews.Role(actorRole(r))

	// A club admin may only decide on reviews of their own club.
	if role == eventreviews.RoleClubAdmin {
		review, err := app.feedback.GetReview(r.Context(), reviewID)
		if err != nil {
			app.feedbackErrorResponse(w, r, err)
			return
		}
		if review.TargetClubID != actorClubID(r) {
			app.forbiddenResponse(w, r)
			return
		}
	}

	review, err := app.feedback.ReviewDecision(r.Context(), reviewID, role, payload.Decision == "approve")
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"review_id": review.ID,
		"status":    review.Status,
	})
}

// pendingReviewsHandler is the platform admin moderation queue.
func (app *application) pendingReviewsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	reviews, total, err := app.feedback.PendingReviews(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"reviews":    reviews,
		"pagination": p,
	})
}
