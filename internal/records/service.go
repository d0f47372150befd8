// Package records manages per-user activity logs, feedback and mood entries.
//
// Every operation is keyed by user email. Reads for an unknown user return
// empty results; writes fail with ErrUserNotFound.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/validation"
)

// DefaultRecentLimit is used by GetRecentActivities for non-positive limits.
const DefaultRecentLimit = 10

var (
	// ErrUserNotFound is returned by writes for an unknown email.
	ErrUserNotFound = errors.New("user not found")

	// ErrActivityNotFound is returned when an activity does not exist or
	// belongs to another user.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrFeedbackNotFound is returned when deleting unknown feedback.
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrMoodEntryNotFound is returned when a mood entry does not exist or
	// belongs to another user.
	ErrMoodEntryNotFound = errors.New("mood entry not found")
)

// ActivityInput describes an activity to log or overwrite.
type ActivityInput struct {
	Title      string    `json:"title" validate:"required,max=255"`
	Mood       string    `json:"mood" validate:"required,max=64"`
	Type       string    `json:"type" validate:"required,max=64"`
	OccurredAt time.Time `json:"occurredAt"` // zero means now
	Duration   int       `json:"duration" validate:"gte=0"`
	Rating     float64   `json:"rating" validate:"gte=0,lte=5"`
}

// FeedbackInput describes feedback to save.
type FeedbackInput struct {
	Message string `json:"message" validate:"required,max=4000"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

// MoodInput describes a mood entry to add or overwrite.
type MoodInput struct {
	Mood      string    `json:"mood" validate:"required,max=64"`
	EntryTime time.Time `json:"entryTime"` // zero means now
}

// Service handles activity, feedback and mood entry persistence.
type Service struct {
	db  *db.DB
	now func() time.Time
}

// New creates a new records service.
func New(database *db.DB) *Service {
	return &Service{db: database, now: time.Now}
}

// LogActivity records an activity for the user.
func (s *Service) LogActivity(ctx context.Context, email string, in ActivityInput) (*db.Activity, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return nil, err
	}

	a := &db.Activity{
		UserID:     userID,
		Title:      in.Title,
		Mood:       in.Mood,
		Type:       in.Type,
		OccurredAt: s.timeOrNow(in.OccurredAt),
		Duration:   in.Duration,
		Rating:     in.Rating,
	}
	if err := s.db.Activities().Create(ctx, a); err != nil {
		return nil, fmt.Errorf("logging activity: %w", err)
	}
	return a, nil
}

// GetActivities returns all of the user's activities, most recent first.
func (s *Service) GetActivities(ctx context.Context, email string) ([]db.Activity, error) {
	return s.listActivities(ctx, email, 0)
}

// GetRecentActivities returns at most limit activities, most recent first.
func (s *Service) GetRecentActivities(ctx context.Context, email string, limit int) ([]db.Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.listActivities(ctx, email, limit)
}

func (s *Service) listActivities(ctx context.Context, email string, limit int) ([]db.Activity, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil || !ok {
		return []db.Activity{}, err
	}
	activities, err := s.db.Activities().ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}
	if activities == nil {
		activities = []db.Activity{}
	}
	return activities, nil
}

// UpdateActivity overwrites one of the user's activities.
func (s *Service) UpdateActivity(ctx context.Context, email string, id int64, in ActivityInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return err
	}

	err = s.db.Activities().Update(ctx, &db.Activity{
		ID:         id,
		UserID:     userID,
		Title:      in.Title,
		Mood:       in.Mood,
		Type:       in.Type,
		OccurredAt: s.timeOrNow(in.OccurredAt),
		Duration:   in.Duration,
		Rating:     in.Rating,
	})
	if errors.Is(err, db.ErrNotFound) {
		return ErrActivityNotFound
	}
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return nil
}

// DeleteActivity removes one of the user's activities.
func (s *Service) DeleteActivity(ctx context.Context, email string, id int64) error {
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return err
	}
	err = s.db.Activities().Delete(ctx, userID, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrActivityNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return nil
}

// SaveFeedback stores feedback from the user. Ratings run from 1 to 5.
func (s *Service) SaveFeedback(ctx context.Context, email string, in FeedbackInput) (*db.Feedback, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return nil, err
	}

	f := &db.Feedback{UserID: userID, Message: in.Message, Rating: in.Rating}
	if err := s.db.Feedback().Create(ctx, f); err != nil {
		return nil, fmt.Errorf("saving feedback: %w", err)
	}
	return f, nil
}

// GetFeedback returns the user's feedback, newest first.
func (s *Service) GetFeedback(ctx context.Context, email string) ([]db.Feedback, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil || !ok {
		return []db.Feedback{}, err
	}
	items, err := s.db.Feedback().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}
	if items == nil {
		items = []db.Feedback{}
	}
	return items, nil
}

// GetAllFeedback returns feedback from every user, newest first.
func (s *Service) GetAllFeedback(ctx context.Context) ([]db.Feedback, error) {
	items, err := s.db.Feedback().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading all feedback: %w", err)
	}
	if items == nil {
		items = []db.Feedback{}
	}
	return items, nil
}

// DeleteFeedback removes feedback by id.
func (s *Service) DeleteFeedback(ctx context.Context, id int64) error {
	err := s.db.Feedback().Delete(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrFeedbackNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting feedback: %w", err)
	}
	return nil
}

// AddMoodEntry records a mood for the user.
func (s *Service) AddMoodEntry(ctx context.Context, email string, in MoodInput) (*db.MoodEntry, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return nil, err
	}

	e := &db.MoodEntry{UserID: userID, Mood: in.Mood, EntryTime: s.timeOrNow(in.EntryTime)}
	if err := s.db.MoodEntries().Create(ctx, e); err != nil {
		return nil, fmt.Errorf("adding mood entry: %w", err)
	}
	return e, nil
}

// GetMoodEntries returns the user's mood entries, most recent first.
func (s *Service) GetMoodEntries(ctx context.Context, email string) ([]db.MoodEntry, error) {
	userID, ok, err := s.lookupUser(ctx, email)
	if err != nil || !ok {
		return []db.MoodEntry{}, err
	}
	entries, err := s.db.MoodEntries().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading mood entries: %w", err)
	}
	if entries == nil {
		entries = []db.MoodEntry{}
	}
	return entries, nil
}

// UpdateMoodEntry overwrites one of the user's mood entries.
func (s *Service) UpdateMoodEntry(ctx context.Context, email string, id int64, in MoodInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return err
	}
	err = s.db.MoodEntries().Update(ctx, userID, id, in.Mood, s.timeOrNow(in.EntryTime))
	if errors.Is(err, db.ErrNotFound) {
		return ErrMoodEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("updating mood entry: %w", err)
	}
	return nil
}

// DeleteMoodEntry removes one of the user's mood entries.
func (s *Service) DeleteMoodEntry(ctx context.Context, email string, id int64) error {
	userID, err := s.requireUser(ctx, email)
	if err != nil {
		return err
	}
	err = s.db.MoodEntries().Delete(ctx, userID, id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrMoodEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting mood entry: %w", err)
	}
	return nil
}

// GetTotalUsers returns the number of registered users.
func (s *Service) GetTotalUsers(ctx context.Context) (int64, error) {
	n, err := s.db.Users().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// GetTotalActivities returns the number of logged activities.
func (s *Service) GetTotalActivities(ctx context.Context) (int64, error) {
	n, err := s.db.Activities().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return n, nil
}

// lookupUser resolves email to an id. ok is false for unknown users.
func (s *Service) lookupUser(ctx context.Context, email string) (int64, bool, error) {
	id, err := s.db.Users().IDByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		logging.Ctx(ctx).Debug().Str("email", email).Msg("records requested for unknown user")
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolving user: %w", err)
	}
	return id, true, nil
}

func (s *Service) requireUser(ctx context.Context, email string) (int64, error) {
	id, ok, err := s.lookupUser(ctx, email)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUserNotFound
	}
	return id, nil
}

func (s *Service) timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t
}
