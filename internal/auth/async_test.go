package auth

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodflix/moodflix/internal/async"
	"github.com/moodflix/moodflix/internal/db"
)

func TestAsync_LoginUser(t *testing.T) {
	svc, mock := newTestService(t)
	exec := async.NewExecutor(3, 4)
	defer exec.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("ann@example.com").
		WillReturnRows(userRows(db.User{
			ID:           3,
			Email:        "ann@example.com",
			PasswordHash: hashPassword(t, "secret1"),
			Role:         db.RoleUser,
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}))

	f := NewAsync(svc, exec).LoginUserAsync(context.Background(), "ann@example.com", "secret1")
	resp, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", resp.LocalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAsync_GetUserDetailsReportsFailure(t *testing.T) {
	svc, mock := newTestService(t)
	exec := async.NewExecutor(1, 1)
	defer exec.Close()

	mock.ExpectQuery(selectUserByEmail).WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	f := NewAsync(svc, exec).GetUserDetailsAsync(context.Background(), "ghost@example.com")
	<-f.Done()
	details, err := f.Await(context.Background())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, details)
}
