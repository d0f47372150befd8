package db

import (
	"strconv"
	"strings"
	"time"
)

// Role is a user's access level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	DisplayName  string
	FullName     string
	Age          *int // nullable
	Gender       string
	PhotoURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Content represents a catalog item (movie, show, ...).
type Content struct {
	ID          int64
	Title       string
	Mood        string
	Type        string
	Link        string
	Description string
	ImageURL    *string // nullable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WatchlistItem is a content row joined with the time it was saved.
type WatchlistItem struct {
	Content Content
	AddedAt time.Time
}

// Activity is a logged viewing session.
type Activity struct {
	ID         int64
	UserID     int64
	Title      string
	Mood       string
	Type       string
	OccurredAt time.Time
	Duration   int // minutes
	Rating     float64
}

// Feedback is a free-text message with a rating left by a user.
type Feedback struct {
	ID        int64
	UserID    int64
	Message   string
	Rating    int
	CreatedAt time.Time
}

// MoodEntry is a mood logged by a user at a point in time.
type MoodEntry struct {
	ID        int64
	UserID    int64
	Mood      string
	EntryTime time.Time
}

// ContentKey selects a content row either by numeric id or by title.
// The zero value selects nothing.
type ContentKey struct {
	id    int64
	title string
	byID  bool
}

// ByID selects content by primary key.
func ByID(id int64) ContentKey {
	return ContentKey{id: id, byID: true}
}

// ByTitle selects content by exact title.
func ByTitle(title string) ContentKey {
	return ContentKey{title: title}
}

// ParseContentKey decides once whether raw names an id or a title.
// "content_42" and "42" select id 42; anything else is a title.
func ParseContentKey(raw string) ContentKey {
	s := strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(strings.TrimPrefix(s, "content_"), 10, 64); err == nil {
		return ByID(id)
	}
	return ByTitle(raw)
}

// ID returns the id and whether the key selects by id.
func (k ContentKey) ID() (int64, bool) {
	return k.id, k.byID
}

// Title returns the title and whether the key selects by title.
func (k ContentKey) Title() (string, bool) {
	return k.title, !k.byID && k.title != ""
}

func (k ContentKey) String() string {
	if k.byID {
		return "content_" + strconv.FormatInt(k.id, 10)
	}
	return strconv.Quote(k.title)
}
