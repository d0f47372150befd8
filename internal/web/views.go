package web

import (
	"strconv"
	"time"

	"github.com/moodflix/moodflix/internal/content"
	"github.com/moodflix/moodflix/internal/db"
)

// Response shapes for storage rows. Timestamps are unix millis.

type userView struct {
	LocalID     string  `json:"localId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	FullName    string  `json:"fullName,omitempty"`
	PhotoURL    string  `json:"photoUrl,omitempty"`
	Role        db.Role `json:"role"`
}

func newUserView(u *db.User) userView {
	return userView{
		LocalID:     strconv.FormatInt(u.ID, 10),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		FullName:    u.FullName,
		PhotoURL:    u.PhotoURL,
		Role:        u.Role,
	}
}

type activityView struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Mood       string  `json:"mood"`
	Type       string  `json:"type"`
	OccurredAt int64   `json:"occurredAt"`
	Duration   int     `json:"duration"`
	Rating     float64 `json:"rating"`
}

type feedbackView struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Message   string `json:"message"`
	Rating    int    `json:"rating"`
	CreatedAt int64  `json:"createdAt"`
}

type moodEntryView struct {
	ID        int64  `json:"id"`
	Mood      string `json:"mood"`
	EntryTime int64  `json:"entryTime"`
}

type watchlistItemView struct {
	content.Entry
	AddedAt int64 `json:"addedAt"`
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func usersView(users []db.User) []userView {
	out := make([]userView, len(users))
	for i := range users {
		out[i] = newUserView(&users[i])
	}
	return out
}

func activitiesView(activities []db.Activity) []activityView {
	out := make([]activityView, len(activities))
	for i, a := range activities {
		out[i] = activityView{
			ID:         a.ID,
			Title:      a.Title,
			Mood:       a.Mood,
			Type:       a.Type,
			OccurredAt: millis(a.OccurredAt),
			Duration:   a.Duration,
			Rating:     a.Rating,
		}
	}
	return out
}

func feedbackViews(items []db.Feedback) []feedbackView {
	out := make([]feedbackView, len(items))
	for i, f := range items {
		out[i] = feedbackView{
			ID:        f.ID,
			UserID:    f.UserID,
			Message:   f.Message,
			Rating:    f.Rating,
			CreatedAt: millis(f.CreatedAt),
		}
	}
	return out
}

func moodEntriesView(entries []db.MoodEntry) []moodEntryView {
	out := make([]moodEntryView, len(entries))
	for i, e := range entries {
		out[i] = moodEntryView{ID: e.ID, Mood: e.Mood, EntryTime: millis(e.EntryTime)}
	}
	return out
}

func contentView(items []db.Content) []content.Entry {
	out := make([]content.Entry, len(items))
	for i := range items {
		out[i] = content.NewEntry(&items[i])
	}
	return out
}

func watchlistView(items []db.WatchlistItem) []watchlistItemView {
	out := make([]watchlistItemView, len(items))
	for i := range items {
		out[i] = watchlistItemView{
			Entry:   content.NewEntry(&items[i].Content),
			AddedAt: millis(items[i].AddedAt),
		}
	}
	return out
}
