package watchlist

import (
	"context"
	"errors"
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
	selectUserID    = regexp.QuoteMeta(`SELECT id FROM users WHERE email = $1`)
	selectContentID = regexp.QuoteMeta(`SELECT id FROM content WHERE`)
)

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(db.NewWithQuerier(mock)), mock
}

func idRow(id int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id"}).AddRow(id)
}

func TestAdd_Idempotent(t *testing.T) {
	svc, mock := newTestService(t)
	for _, rows := range []int64{1, 0} {
		mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
		mock.ExpectQuery(selectContentID).WithArgs(int64(5)).WillReturnRows(idRow(5))
		mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id, content_id) DO NOTHING`)).
			WithArgs(int64(1), int64(5)).
			WillReturnResult(pgxmock.NewResult("INSERT", rows))
	}

	added, err := svc.Add(context.Background(), "ann@example.com", db.ByID(5))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(context.Background(), "ann@example.com", db.ByID(5))
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_NormalizesEmail(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectQuery(selectContentID).WithArgs(int64(5)).WillReturnRows(idRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO watchlist`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	added, err := svc.Add(context.Background(), " Ann@Example.com ", db.ByID(5))
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_ByTitle(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM content WHERE title = $1`)).WithArgs("Up").WillReturnRows(idRow(8))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO watchlist`)).
		WithArgs(int64(1), int64(8)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := svc.Add(context.Background(), "ann@example.com", db.ByTitle("Up"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_Missing(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(selectUserID).WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

		_, err := svc.Add(context.Background(), "ghost@example.com", db.ByID(5))
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("content", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
		mock.ExpectQuery(selectContentID).WithArgs(int64(404)).WillReturnError(pgx.ErrNoRows)

		_, err := svc.Add(context.Background(), "ann@example.com", db.ByID(404))
		assert.ErrorIs(t, err, ErrContentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRemove_AbsentReportsFalse(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectQuery(selectContentID).WithArgs(int64(5)).WillReturnRows(idRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM watchlist WHERE user_id = $1 AND content_id = $2`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	removed, err := svc.Remove(context.Background(), "ann@example.com", db.ByID(5))
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsInWatchlist_UnknownContent(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectQuery(selectContentID).WithArgs("Nope").WillReturnError(pgx.ErrNoRows)

	ok, err := svc.IsInWatchlist(context.Background(), "ann@example.com", db.ByTitle("Nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountAndClear(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM watchlist WHERE user_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM watchlist WHERE user_id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := svc.Count(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	cleared, err := svc.Clear(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_UnknownUser(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	_, err := svc.Clear(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCount_UnknownUserIsZero(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	n, err := svc.Count(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func watchlistRows() *pgxmock.Rows {
	newer := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	img := "http://x.com/b.png"
	return pgxmock.NewRows([]string{
		"id", "title", "mood", "type", "link", "description", "image_url", "created_at", "updated_at", "added_at",
	}).
		AddRow(int64(2), "B", "calm", "show", "", "", &img, older, older, newer).
		AddRow(int64(1), "A", "happy", "movie", "", "", (*string)(nil), older, older, older)
}

func TestGet_MostRecentFirst(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY w.added_at DESC, c.id DESC`)).
		WithArgs(int64(1)).
		WillReturnRows(watchlistRows())

	items, err := svc.Get(context.Background(), "ann@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Content.Title)
	assert.True(t, items[0].AddedAt.After(items[1].AddedAt))
}

func TestGetJSON(t *testing.T) {
	t.Run("keys by position", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnRows(idRow(1))
		mock.ExpectQuery(regexp.QuoteMeta(`JOIN watchlist w`)).WithArgs(int64(1)).WillReturnRows(watchlistRows())

		entries := svc.GetJSON(context.Background(), "ann@example.com")
		require.Len(t, entries, 2)
		assert.Equal(t, "item_0", entries[0].Key)
		assert.Equal(t, int64(2), entries[0].ContentID)
		assert.Equal(t, "http://x.com/b.png", entries[0].ImageURL)
		assert.Equal(t, "item_1", entries[1].Key)
		assert.Empty(t, entries[1].ImageURL)
	})

	t.Run("storage failure yields empty", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(selectUserID).WithArgs("ann@example.com").WillReturnError(errors.New("timeout"))

		entries := svc.GetJSON(context.Background(), "ann@example.com")
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}
