package web

import (
	"net/http"

	"github.com/moodflix/moodflix/internal/auth"
	"github.com/moodflix/moodflix/internal/db"
)

type roleBody struct {
	Role db.Role `json:"role"`
}

type statsView struct {
	Users      int64 `json:"users"`
	Activities int64 `json:"activities"`
	Content    int64 `json:"content"`
}

// AllUsers returns every account keyed by sanitized email
// (GET /api/admin/users).
func (h *Handlers) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope(users, func(u auth.UserDetails) string { return u.Key }))
}

// UserDetails returns one account (GET /api/admin/users/{email}).
func (h *Handlers) UserDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.auth.GetUserDetails(r.Context(), pathParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// PatchUser applies a partial admin edit (PATCH /api/admin/users/{email}).
func (h *Handlers) PatchUser(w http.ResponseWriter, r *http.Request) {
	var u auth.DetailsUpdate
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.UpdateUserDetails(r.Context(), pathParam(r, "email"), u); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutUser replaces every editable field (PUT /api/admin/users/{email}).
func (h *Handlers) PutUser(w http.ResponseWriter, r *http.Request) {
	var p auth.AdminProfile
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.UpdateAdminProfileWithPut(r.Context(), pathParam(r, "email"), p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRole changes an account's role (PUT /api/admin/users/{email}/role).
func (h *Handlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var body roleBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.UpdateUserRole(r.Context(), pathParam(r, "email"), body.Role); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes an account and everything it owns
// (DELETE /api/admin/users/{email}).
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteUser(r.Context(), pathParam(r, "email")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AllFeedback lists feedback from every user (GET /api/admin/feedback).
func (h *Handlers) AllFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.records.GetAllFeedback(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackViews(items))
}

// DeleteFeedback removes one feedback row (DELETE /api/admin/feedback/{id}).
func (h *Handlers) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := intParam("id", pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.records.DeleteFeedback(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns row counts (GET /api/admin/stats).
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	var (
		stats statsView
		err   error
	)
	if stats.Users, err = h.records.GetTotalUsers(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if stats.Activities, err = h.records.GetTotalActivities(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	if stats.Content, err = h.content.GetContentCount(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
