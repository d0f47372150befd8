package web

import (
	"net/http"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/records"
)

// Activities lists the caller's activities, most recent first
// (GET /api/activities?limit=). Without a limit every activity is returned.
func (h *Handlers) Activities(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var activities []db.Activity
	if limit > 0 {
		activities, err = h.records.GetRecentActivities(r.Context(), currentEmail(r), limit)
	} else {
		activities, err = h.auth.GetUserActivity(r.Context(), currentEmail(r))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activitiesView(activities))
}

// LogActivity records an activity (POST /api/activities).
func (h *Handlers) LogActivity(w http.ResponseWriter, r *http.Request) {
	var in records.ActivityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.auth.LogActivity(r.Context(), currentEmail(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activitiesView([]db.Activity{*a})[0])
}

// UpdateActivity overwrites an activity (PUT /api/activities/{id}).
func (h *Handlers) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := intParam("id", pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in records.ActivityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.records.UpdateActivity(r.Context(), currentEmail(r), id, in); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteActivity removes an activity (DELETE /api/activities/{id}).
func (h *Handlers) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := intParam("id", pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.records.DeleteActivity(r.Context(), currentEmail(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoodEntries lists the caller's moods, most recent first (GET /api/moods).
func (h *Handlers) MoodEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.records.GetMoodEntries(r.Context(), currentEmail(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moodEntriesView(entries))
}

// AddMoodEntry logs a mood (POST /api/moods).
func (h *Handlers) AddMoodEntry(w http.ResponseWriter, r *http.Request) {
	var in records.MoodInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.records.AddMoodEntry(r.Context(), currentEmail(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, moodEntriesView([]db.MoodEntry{*e})[0])
}

// UpdateMoodEntry overwrites a mood entry (PUT /api/moods/{id}).
func (h *Handlers) UpdateMoodEntry(w http.ResponseWriter, r *http.Request) {
	id, err := intParam("id", pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in records.MoodInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.records.UpdateMoodEntry(r.Context(), currentEmail(r), id, in); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMoodEntry removes a mood entry (DELETE /api/moods/{id}).
func (h *Handlers) DeleteMoodEntry(w http.ResponseWriter, r *http.Request) {
	id, err := intParam("id", pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.records.DeleteMoodEntry(r.Context(), currentEmail(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feedback lists the caller's feedback (GET /api/feedback).
func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.records.GetFeedback(r.Context(), currentEmail(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackViews(items))
}

// SaveFeedback stores feedback (POST /api/feedback).
func (h *Handlers) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	var in records.FeedbackInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	f, err := h.auth.SaveFeedback(r.Context(), currentEmail(r), in.Message, in.Rating)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, feedbackViews([]db.Feedback{*f})[0])
}
