package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/feedback"
	"clubmatch/internal/params"

	"github.com/go-chi/chi/v5"
)

type updateConflictPayload struct {
	Status     *string `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS AWAITING_RESPONSE"`
	Priority   *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AdminNotes *string `json:"admin_notes"`
}

// updateConflictHandler handles same-tier edits: investigation status,
// priority, notes. Closing a conflict goes through the resolution endpoint.
func (app *application) updateConflictHandler(w http.ResponseWriter, r *http.Request) {
	conflictID, err := strconv.ParseInt(chi.URLParam(r, "conflictID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid conflict ID"))
		return
	}

	var payload updateConflictPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	in := feedback.UpdateConflictInput{AdminNotes: payload.AdminNotes}
	if payload.Status != nil {
		status := conflicts.Status(*payload.Status)
		in.Status = &status
	}
	if payload.Priority != nil {
		priority := conflicts.Priority(*payload.Priority)
		in.Priority = &priority
	}

	conflict, err := app.feedback.UpdateConflict(r.Context(), conflictID, in)
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, conflict)
}

type resolveConflictPayload struct {
	ResolutionType  string `json:"resolution_type" validate:"required,oneof=MEDIATED REFUND_ISSUED APOLOGY_ISSUED NO_ACTION WARNING_ISSUED DISMISSED"`
	ResolutionNotes string `json:"resolution_notes" validate:"required"`
}

// resolveConflictHandler closes a conflict and, atomically with it, moves
// the disputed review to CONFLICT_RESOLVED.
func (app *application) resolveConflictHandler(w http.ResponseWriter, r *http.Request) {
	conflictID, err := strconv.ParseInt(chi.URLParam(r, "conflictID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid conflict ID"))
		return
	}

	var payload resolveConflictPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.feedbackErrorResponse(w, r, feedback.ErrMissingResolutionType)
		return
	}

	resolvedBy := fmt.Sprintf("%s:%d", actorRole(r), actorID(r))

	conflict, review, err := app.feedback.ResolveConflict(r.Context(), conflictID,
		conflicts.ResolutionType(payload.ResolutionType), payload.ResolutionNotes, resolvedBy)
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"conflict":             conflict,
		"linked_review_status": review.Status,
	})
}

// listConflictsHandler lists open conflicts for the moderation dashboard,
// highest priority first. ?priority=HIGH narrows the list.
func (app *application) listConflictsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	var priority *conflicts.Priority
	if raw := r.URL.Query().Get("priority"); raw != "" {
		value := conflicts.Priority(raw)
		priority = &value
	}

	open, total, err := app.feedback.OpenConflicts(r.Context(), priority, p.Limit, p.Offset)
	if err != nil {
		app.feedbackErrorResponse(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"conflicts":  open,
		"pagination": p,
	})
}
