package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithQuerier(mock), mock
}

func TestParseContentKey(t *testing.T) {
	tests := []struct {
		raw     string
		wantID  int64
		byID    bool
		wantStr string
	}{
		{raw: "content_42", wantID: 42, byID: true, wantStr: "content_42"},
		{raw: "42", wantID: 42, byID: true, wantStr: "content_42"},
		{raw: " 7 ", wantID: 7, byID: true, wantStr: "content_7"},
		{raw: "Se7en", wantStr: `"Se7en"`},
		{raw: "content_", wantStr: `"content_"`},
		{raw: "2001: A Space Odyssey", wantStr: `"2001: A Space Odyssey"`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			key := ParseContentKey(tt.raw)
			id, byID := key.ID()
			if byID != tt.byID || id != tt.wantID {
				t.Errorf("ID() = (%d, %v), want (%d, %v)", id, byID, tt.wantID, tt.byID)
			}
			if _, byTitle := key.Title(); byTitle == tt.byID {
				t.Errorf("Title() selects = %v, want %v", byTitle, !tt.byID)
			}
			if got := key.String(); got != tt.wantStr {
				t.Errorf("String() = %s, want %s", got, tt.wantStr)
			}
		})
	}
}

func TestContentKey_ZeroSelectsNothing(t *testing.T) {
	var key ContentKey
	_, byID := key.ID()
	_, byTitle := key.Title()
	assert.False(t, byID)
	assert.False(t, byTitle)

	_, _, err := keyPredicate(key, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())
}

func TestMigrate(t *testing.T) {
	database, mock := newMockDB(t)
	for range schema {
		mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, database.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsAtFirstFailure(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnError(errors.New("permission denied"))

	err := database.Migrate(context.Background())
	assert.ErrorContains(t, err, "statement 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_CreateDuplicate(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := database.Users().Create(context.Background(), &User{Email: "ann@example.com", Role: RoleUser})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUsers_GetByEmailMissing(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := database.Users().GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_LookupsNormalizeEmail(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE email = $1`)).
		WithArgs("ann@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := database.Users().IDByEmail(context.Background(), "  Ann@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, "ann@example.com", NormalizeEmail("\tANN@example.com "))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_DeleteMissing(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := database.Users().Delete(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriends_AddWritesBothDirections(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`VALUES ($1, $2, NOW()), ($2, $1, NOW()) ON CONFLICT (user_id, friend_id) DO NOTHING`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, database.Friends().Add(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContent_SearchEscapesWildcards(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'`)).
		WithArgs(`%50\% off%`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "mood", "type", "link", "description", "image_url", "created_at", "updated_at"}))

	items, err := database.Content().Search(context.Background(), "50% off")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContent_ListFilters(t *testing.T) {
	tests := []struct {
		name string
		mood string
		typ  string
		sql  string
		args []any
	}{
		{"none", "", "", `FROM content ORDER BY id`, nil},
		{"mood", "happy", "", `FROM content WHERE mood = $1 ORDER BY id`, []any{"happy"}},
		{"type", "", "show", `FROM content WHERE type = $1 ORDER BY id`, []any{"show"}},
		{"both", "happy", "show", `FROM content WHERE mood = $1 AND type = $2 ORDER BY id`, []any{"happy", "show"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, mock := newMockDB(t)
			exp := mock.ExpectQuery(regexp.QuoteMeta(tt.sql))
			if len(tt.args) > 0 {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnRows(pgxmock.NewRows([]string{"id", "title", "mood", "type", "link", "description", "image_url", "created_at", "updated_at"}).
				AddRow(int64(1), "Up", "happy", "show", "", "", (*string)(nil), time.Time{}, time.Time{}))

			items, err := database.Content().List(context.Background(), tt.mood, tt.typ)
			require.NoError(t, err)
			assert.Len(t, items, 1)
			assert.Nil(t, items[0].ImageURL)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestActivities_ListLimit(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY occurred_at DESC, id DESC LIMIT $2`)).
		WithArgs(int64(7), 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "mood", "type", "occurred_at", "duration_minutes", "rating"}))

	_, err := database.Activities().ListForUser(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
