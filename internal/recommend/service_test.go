package recommend

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
)

var (
	activityColumns = []string{"id", "user_id", "title", "mood", "type", "occurred_at", "duration_minutes", "rating"}
	contentColumns  = []string{"id", "title", "mood", "type", "link", "description", "image_url", "created_at", "updated_at"}
	seen            = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, opts ...Option) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	opts = append([]Option{WithPartitioner(splitByRating), WithConfig(Config{NumClusters: 2})}, opts...)
	return New(db.NewWithQuerier(mock), opts...), mock
}

func expectUser(mock pgxmock.PgxPoolIface, email string, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE email = $1`)).
		WithArgs(email).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
}

func expectActivities(mock pgxmock.PgxPoolIface, userID int64, activities ...db.Activity) {
	rows := pgxmock.NewRows(activityColumns)
	for i, a := range activities {
		rows.AddRow(int64(i+1), userID, a.Title, a.Mood, "movie", seen, a.Duration, a.Rating)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM activities WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(rows)
}

func expectSaved(mock pgxmock.PgxPoolIface, userID int64, ids ...int64) {
	rows := pgxmock.NewRows([]string{"content_id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT content_id FROM watchlist WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(rows)
}

func expectMood(mock pgxmock.PgxPoolIface, mood string, ids ...int64) {
	rows := pgxmock.NewRows(contentColumns)
	for _, id := range ids {
		rows.AddRow(id, "title", mood, "movie", "", "", (*string)(nil), seen, seen)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM content WHERE mood = $1 ORDER BY id`)).
		WithArgs(mood).
		WillReturnRows(rows)
}

func ids(items []db.Content) []int64 {
	out := make([]int64, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestRecommend_FromBestCluster(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	expectActivities(mock, 7,
		activity("happy", 5, 120),
		activity("sad", 1, 20),
		activity("calm", 4, 100),
		activity("happy", 4.5, 90),
		activity("tense", 1, 30),
		activity("tense", 2, 25),
	)
	expectSaved(mock, 7, 2)
	expectMood(mock, "happy", 1, 2, 3)
	expectMood(mock, "calm", 3, 4)

	got, err := svc.Recommend(context.Background(), "ann@example.com", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4}, ids(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommend_Limit(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	expectActivities(mock, 7, activity("happy", 5, 120))
	expectSaved(mock, 7)
	expectMood(mock, "happy", 1, 2, 3)

	got, err := svc.Recommend(context.Background(), "ann@example.com", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommend_UnknownUser(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := svc.Recommend(context.Background(), "ghost@example.com", 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommend_NoHistory(t *testing.T) {
	svc, mock := newTestService(t)
	expectUser(mock, "ann@example.com", 7)
	expectActivities(mock, 7)

	got, err := svc.Recommend(context.Background(), "ann@example.com", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferredMoods_FallsBackOnFewActivities(t *testing.T) {
	svc, _ := newTestService(t, WithConfig(Config{NumClusters: 5, MaxMoods: 2}))

	got := svc.PreferredMoods(context.Background(), []db.Activity{
		activity("sad", 1, 10),
		activity("sad", 1, 10),
		activity("happy", 5, 10),
	})
	assert.Equal(t, []string{"sad", "happy"}, got)
}
