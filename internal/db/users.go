package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, role, display_name, full_name, age, gender, photo_url, created_at, updated_at`

// UserRepository handles user database operations.
type UserRepository struct {
	q Querier
}

// UserUpdate carries a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	DisplayName *string
	FullName    *string
	Age         *int
	Gender      *string
	PhotoURL    *string
	Role        *Role
}

// NormalizeEmail trims and lowercases an email. Every lookup by email goes
// through it, so callers may pass addresses as typed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user and fills in its generated id and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	query := `
		INSERT INTO users (email, password_hash, role, display_name, full_name, age, gender, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.DisplayName,
		user.FullName,
		user.Age,
		user.Gender,
		user.PhotoURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.q.QueryRow(ctx, query, NormalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// IDByEmail resolves a user's numeric id.
func (r *UserRepository) IDByEmail(ctx context.Context, email string) (int64, error) {
	query := `SELECT id FROM users WHERE email = $1`
	var id int64
	err := r.q.QueryRow(ctx, query, NormalizeEmail(email)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving user id: %w", err)
	}
	return id, nil
}

// ExistsByEmail reports whether an account with the email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}

// List retrieves every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Update applies a partial update to the user with the given email.
func (r *UserRepository) Update(ctx context.Context, email string, u UserUpdate) error {
	query := `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			full_name = COALESCE($3, full_name),
			age = COALESCE($4, age),
			gender = COALESCE($5, gender),
			photo_url = COALESCE($6, photo_url),
			role = COALESCE($7, role),
			updated_at = NOW()
		WHERE email = $1
	`
	var role *string
	if u.Role != nil {
		s := string(*u.Role)
		role = &s
	}
	result, err := r.q.Exec(ctx, query, NormalizeEmail(email), u.DisplayName, u.FullName, u.Age, u.Gender, u.PhotoURL, role)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceProfile overwrites every editable profile field, including
// clearing the age when it is nil.
func (r *UserRepository) ReplaceProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users SET
			display_name = $2,
			full_name = $3,
			age = $4,
			gender = $5,
			photo_url = $6,
			role = $7,
			updated_at = NOW()
		WHERE email = $1
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		NormalizeEmail(user.Email),
		user.DisplayName,
		user.FullName,
		user.Age,
		user.Gender,
		user.PhotoURL,
		string(user.Role),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("replacing user profile: %w", err)
	}
	return nil
}

// Delete removes the user with the given email.
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`
	result, err := r.q.Exec(ctx, query, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.DisplayName,
		&user.FullName,
		&user.Age,
		&user.Gender,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = Role(role)
	return &user, nil
}
