package web

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/moodflix/moodflix/internal/auth"
	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/legacy"
	"github.com/moodflix/moodflix/internal/recommend"
	"github.com/moodflix/moodflix/internal/records"
	"github.com/moodflix/moodflix/internal/watchlist"
)

// Services are the application services the handlers call.
type Services struct {
	Auth      *auth.Service
	Async     *auth.Async
	Content   *content.Service
	Records   *records.Service
	Watchlist *watchlist.Service
	Recommend *recommend.Service
}

// Handlers contains HTTP handlers for the JSON API.
type Handlers struct {
	auth      *auth.Service
	async     *auth.Async
	content   *content.Service
	records   *records.Service
	watchlist *watchlist.Service
	recommend *recommend.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc Services) *Handlers {
	return &Handlers{
		auth:      svc.Auth,
		async:     svc.Async,
		content:   svc.Content,
		records:   svc.Records,
		watchlist: svc.Watchlist,
		recommend: svc.Recommend,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailBody struct {
	Email string `json:"email"`
}

type photoBody struct {
	Path string `json:"path"`
}

// Signup registers an account (POST /api/auth/signup).
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// Public signups always get the user role; admins are promoted by an admin.
	req.Role = ""

	resp, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login checks credentials on the worker pool (POST /api/auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.async.LoginUserAsync(r.Context(), req.Email, req.Password).Await(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the caller's account details (GET /api/users/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	details, err := h.async.GetUserDetailsAsync(r.Context(), currentEmail(r)).Await(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// UpdateMe applies a partial profile update (PATCH /api/users/me).
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var u auth.ProfileUpdate
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.UpdateProfile(r.Context(), currentEmail(r), u); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMe removes the caller's account (DELETE /api/users/me).
func (h *Handlers) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteUser(r.Context(), currentEmail(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPhoto records a local image path as the profile photo
// (PUT /api/users/me/photo).
func (h *Handlers) SetPhoto(w http.ResponseWriter, r *http.Request) {
	var body photoBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	uri, err := h.auth.UploadProfileImage(r.Context(), currentEmail(r), body.Path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photoUrl": uri})
}

// Friends lists the caller's friends (GET /api/users/me/friends).
func (h *Handlers) Friends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.auth.GetFriends(r.Context(), currentEmail(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersView(friends))
}

// AddFriend befriends another user (POST /api/users/me/friends).
func (h *Handlers) AddFriend(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.AddFriend(r.Context(), currentEmail(r), body.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFriend ends a friendship (DELETE /api/users/me/friends/{email}).
func (h *Handlers) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	removed, err := h.auth.RemoveFriend(r.Context(), currentEmail(r), pathParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// Recommendations suggests content for the caller
// (GET /api/recommendations?limit=).
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.recommend.Recommend(r.Context(), currentEmail(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentView(items))
}

// pathParam returns the unescaped chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// envelope renders records as a legacy keyed object.
func envelope[T any](items []T, key func(T) string) legacy.Envelope[T] {
	env := make(legacy.Envelope[T], 0, len(items))
	for _, item := range items {
		env = append(env, legacy.Entry[T]{Key: key(item), Value: item})
	}
	return env
}
