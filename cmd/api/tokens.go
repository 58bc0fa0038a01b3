package main

import (
	"errors"
	"net/http"
	"time"

	"clubmatch/internal/domain/reviewtokens"
	"clubmatch/internal/feedback"

	"github.com/go-chi/chi/v5"
)

type issueTokenPayload struct {
	EventID        int64 `json:"event_id" validate:"required,min=1"`
	ReviewerClubID int64 `json:"reviewer_club_id" validate:"required,min=1"`
	TargetClubID   int64 `json:"target_club_id" validate:"required,min=1,nefield=ReviewerClubID"`
}

type issueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// issueReviewTokenHandler mints a single-use review invitation once an event
// concludes. The plaintext token is returned exactly once, for the caller to
// deliver to the reviewer club.
func (app *application) issueReviewTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload issueTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	plain, token, err := app.feedback.IssueToken(r.Context(), payload.EventID, payload.ReviewerClubID, payload.TargetClubID)
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, issueTokenResponse{
		Token:     plain,
		ExpiresAt: token.ExpiresAt,
	})
}

type tokenStatusResponse struct {
	Valid          bool      `json:"valid"`
	Reason         string    `json:"reason,omitempty"`
	EventID        int64     `json:"event_id,omitempty"`
	ReviewerClubID int64     `json:"reviewer_club_id,omitempty"`
	TargetClubID   int64     `json:"target_club_id,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitempty"`
}

// getTokenStatusHandler reports whether the submission form can be rendered
// for a token. Read-only: checking a token never consumes it.
func (app *application) getTokenStatusHandler(w http.ResponseWriter, r *http.Request) {
	plain := chi.URLParam(r, "token")

	token, err := app.feedback.TokenStatus(r.Context(), plain)
	if err != nil {
		switch {
		case errors.Is(err, reviewtokens.ErrExpired), errors.Is(err, reviewtokens.ErrAlreadyUsed):
			// The reviewer still gets the event context, just no form.
			app.jsonResponse(w, http.StatusOK, tokenStatusResponse{
				Valid:          false,
				Reason:         feedback.Code(err),
				EventID:        token.EventID,
				ReviewerClubID: token.ReviewerClubID,
				TargetClubID:   token.TargetClubID,
				ExpiresAt:      token.ExpiresAt,
			})
		case errors.Is(err, reviewtokens.ErrNotFound):
			app.jsonResponse(w, http.StatusOK, tokenStatusResponse{
				Valid:  false,
				Reason: feedback.Code(err),
			})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, tokenStatusResponse{
		Valid:          true,
		EventID:        token.EventID,
		ReviewerClubID: token.ReviewerClubID,
		TargetClubID:   token.TargetClubID,
		ExpiresAt:      token.ExpiresAt,
	})
}
