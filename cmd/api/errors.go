package main

import (
	"errors"
	"net/http"

	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"
	"clubmatch/internal/feedback"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusInternalServerError, "internal", "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusNotFound, "not_found", "resource not found")
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic", "method", r.Method, "path", r.URL.Path, "error", err)
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path)
	writeJSONError(w, http.StatusForbidden, "forbidden", "forbidden")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "path", r.URL.Path)
	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, retry after: "+retryAfter)
}

// feedbackErrorResponse maps a pipeline error onto the HTTP surface. Each
// taxonomy entry keeps its own code so reviewers see expired, already-used
// and unknown links as three different messages, and admins see "already
// handled" rather than a raw error.
func (app *application) feedbackErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := feedback.Code(err)

	switch {
	case errors.Is(err, reviewtokens.ErrNotFound),
		errors.Is(err, eventreviews.ErrNotFound),
		errors.Is(err, conflicts.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, code, "this review link does not exist")

	case errors.Is(err, reviewtokens.ErrExpired):
		writeJSONError(w, http.StatusGone, code, "this review link has expired")

	case errors.Is(err, reviewtokens.ErrAlreadyUsed):
		writeJSONError(w, http.StatusConflict, code, "a review was already submitted with this link")

	case errors.Is(err, feedback.ErrInvalidReference):
		writeJSONError(w, http.StatusBadRequest, code, err.Error())

	case errors.Is(err, feedback.ErrInvalidRating),
		errors.Is(err, feedback.ErrMissingRequiredField),
		errors.Is(err, feedback.ErrUnexpectedField),
		errors.Is(err, feedback.ErrContentTooLong),
		errors.Is(err, feedback.ErrMissingResolutionType):
		writeJSONError(w, http.StatusUnprocessableEntity, code, err.Error())

	case errors.Is(err, eventreviews.ErrInvalidTransition),
		errors.Is(err, conflicts.ErrAlreadyClosed):
		writeJSONError(w, http.StatusConflict, code, "this was already handled")

	case errors.Is(err, feedback.ErrInvariantViolation):
		// Data-integrity bug, alertable; never a user mistake.
		app.logger.Errorw("invariant violation surfaced", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, code, "the server encountered a problem")

	default:
		app.internalServerError(w, r, err)
	}
}
