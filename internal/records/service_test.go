package records

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/validation"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := New(db.NewWithQuerier(mock))
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

func expectUser(mock pgxmock.PgxPoolIface, email string, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE email = $1`)).
		WithArgs(email).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
}

func expectNoUser(mock pgxmock.PgxPoolIface, email string) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE email = $1`)).
		WithArgs(email).
		WillReturnError(pgx.ErrNoRows)
}

var activityColumns = []string{"id", "user_id", "title", "mood", "type", "occurred_at", "duration_minutes", "rating"}

func TestLogActivity(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO activities`)).
		WithArgs(int64(7), "Up", "happy", "movie", fixedNow, 96, 4.5).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	a, err := svc.LogActivity(context.Background(), "ann@example.com", ActivityInput{
		Title:    "Up",
		Mood:     "happy",
		Type:     "movie",
		Duration: 96,
		Rating:   4.5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), a.ID)
	assert.Equal(t, fixedNow, a.OccurredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogActivity_UnknownUser(t *testing.T) {
	svc, mock := newTestService(t)
	expectNoUser(mock, "ghost@example.com")

	_, err := svc.LogActivity(context.Background(), "ghost@example.com", ActivityInput{
		Title: "Up", Mood: "happy", Type: "movie",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogActivity_Invalid(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.LogActivity(context.Background(), "ann@example.com", ActivityInput{
		Title: "Up", Mood: "happy", Type: "movie", Rating: 9,
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActivities_UnknownUserIsEmpty(t *testing.T) {
	svc, mock := newTestService(t)
	expectNoUser(mock, "ghost@example.com")

	got, err := svc.GetActivities(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecentActivities(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "explicit limit", limit: 3, wantLimit: 3},
		{name: "zero uses default", limit: 0, wantLimit: DefaultRecentLimit},
		{name: "negative uses default", limit: -5, wantLimit: DefaultRecentLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newTestService(t)
			expectUser(mock, "ann@example.com", 7)

			newer := fixedNow
			older := fixedNow.Add(-time.Hour)
			mock.ExpectQuery(regexp.QuoteMeta(`FROM activities WHERE user_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT $2`)).
				WithArgs(int64(7), tt.wantLimit).
				WillReturnRows(pgxmock.NewRows(activityColumns).
					AddRow(int64(2), int64(7), "B", "calm", "show", newer, 30, 3.0).
					AddRow(int64(1), int64(7), "A", "happy", "movie", older, 90, 5.0))

			got, err := svc.GetRecentActivities(context.Background(), "ann@example.com", tt.limit)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "B", got[0].Title)
			assert.Equal(t, "A", got[1].Title)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateActivity_NotFound(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE activities`)).
		WithArgs(int64(99), int64(7), "Up", "happy", "movie", fixedNow, 0, 0.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.UpdateActivity(context.Background(), "ann@example.com", 99, ActivityInput{
		Title: "Up", Mood: "happy", Type: "movie",
	})
	assert.ErrorIs(t, err, ErrActivityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteActivity(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM activities WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, svc.DeleteActivity(context.Background(), "ann@example.com", 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFeedback_RatingBounds(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		svc, mock := newTestService(t)
		_, err := svc.SaveFeedback(context.Background(), "ann@example.com", FeedbackInput{
			Message: "great", Rating: rating,
		})
		assert.ErrorIs(t, err, validation.ErrInvalid, "rating %d", rating)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestSaveFeedback(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feedback`)).
		WithArgs(int64(7), "loved it", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), fixedNow))

	f, err := svc.SaveFeedback(context.Background(), "ann@example.com", FeedbackInput{Message: "loved it", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.ID)
	assert.Equal(t, fixedNow, f.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFeedback_UnknownUser(t *testing.T) {
	svc, mock := newTestService(t)
	expectNoUser(mock, "ghost@example.com")

	_, err := svc.SaveFeedback(context.Background(), "ghost@example.com", FeedbackInput{Message: "hi", Rating: 3})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFeedback_NotFound(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM feedback WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, svc.DeleteFeedback(context.Background(), 42), ErrFeedbackNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMoodEntry(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO mood_entries`)).
		WithArgs(int64(7), "anxious", fixedNow).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	e, err := svc.AddMoodEntry(context.Background(), "ann@example.com", MoodInput{Mood: "anxious"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), e.ID)
	assert.Equal(t, fixedNow, e.EntryTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMoodEntries_UnknownUserIsEmpty(t *testing.T) {
	svc, mock := newTestService(t)
	expectNoUser(mock, "ghost@example.com")

	got, err := svc.GetMoodEntries(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMoodEntry_OtherUsersEntry(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	at := fixedNow.Add(-2 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE mood_entries SET mood = $3, entry_time = $4 WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(8), int64(7), "calm", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.UpdateMoodEntry(context.Background(), "ann@example.com", 8, MoodInput{Mood: "calm", EntryTime: at})
	assert.ErrorIs(t, err, ErrMoodEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMoodEntry_UnknownUser(t *testing.T) {
	svc, mock := newTestService(t)
	expectNoUser(mock, "ghost@example.com")

	assert.ErrorIs(t, svc.DeleteMoodEntry(context.Background(), "ghost@example.com", 1), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotals(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM activities`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(340)))

	users, err := svc.GetTotalUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), users)

	activities, err := svc.GetTotalActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(340), activities)
	assert.NoError(t, mock.ExpectationsWereMet())
}
