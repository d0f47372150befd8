package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/legacy"
	"github.com/moodflix/moodflix/internal/records"
	"github.com/moodflix/moodflix/internal/validation"
)

// ProfileUpdate is a partial profile edit made by the user. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	FullName    *string `json:"fullName" validate:"omitempty,max=200"`
	Age         *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender      *string `json:"gender" validate:"omitempty,max=32"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,max=2048"`
}

// DetailsUpdate is a partial edit made by an admin. It may also change the
// role.
type DetailsUpdate struct {
	ProfileUpdate
	Role *db.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

// AdminProfile replaces every editable field of a user.
type AdminProfile struct {
	DisplayName string  `json:"displayName" validate:"max=100"`
	FullName    string  `json:"fullName" validate:"max=200"`
	Age         *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender      string  `json:"gender" validate:"max=32"`
	PhotoURL    string  `json:"photoUrl" validate:"max=2048"`
	Role        db.Role `json:"role" validate:"required,oneof=user admin"`
}

// UserDetails is the admin-facing view of an account. Key is the
// sanitized email used as the legacy object key.
type UserDetails struct {
	Key         string  `json:"-"`
	LocalID     string  `json:"localId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	FullName    string  `json:"fullName"`
	Age         *int    `json:"age,omitempty"`
	Gender      string  `json:"gender"`
	PhotoURL    string  `json:"photoUrl"`
	Role        db.Role `json:"role"`
	CreatedAt   int64   `json:"createdAt"` // unix millis
	UpdatedAt   int64   `json:"updatedAt"` // unix millis
}

func newUserDetails(u *db.User) UserDetails {
	return UserDetails{
		Key:         legacy.SanitizeKey(u.Email),
		LocalID:     strconv.FormatInt(u.ID, 10),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		FullName:    u.FullName,
		Age:         u.Age,
		Gender:      u.Gender,
		PhotoURL:    u.PhotoURL,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt.UnixMilli(),
		UpdatedAt:   u.UpdatedAt.UnixMilli(),
	}
}

// UpdateProfile applies a partial profile edit.
func (s *Service) UpdateProfile(ctx context.Context, email string, u ProfileUpdate) error {
	if err := validation.Struct(&u); err != nil {
		return err
	}
	return s.updateUser(ctx, email, db.UserUpdate{
		DisplayName: u.DisplayName,
		FullName:    u.FullName,
		Age:         u.Age,
		Gender:      u.Gender,
		PhotoURL:    u.PhotoURL,
	})
}

// GetFriends returns the user's friends. An unknown user has none.
func (s *Service) GetFriends(ctx context.Context, email string) ([]db.User, error) {
	userID, err := s.db.Users().IDByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return []db.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting friends: %w", err)
	}

	friends, err := s.db.Friends().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting friends: %w", err)
	}
	if friends == nil {
		friends = []db.User{}
	}
	return friends, nil
}

// AddFriend links two users in both directions. Adding an existing friend
// is a no-op.
func (s *Service) AddFriend(ctx context.Context, email, friendEmail string) error {
	userID, friendID, err := s.resolvePair(ctx, email, friendEmail)
	if err != nil {
		return fmt.Errorf("adding friend: %w", err)
	}
	if err := s.db.Friends().Add(ctx, userID, friendID); err != nil {
		return fmt.Errorf("adding friend: %w", err)
	}
	return nil
}

// RemoveFriend unlinks two users and reports whether they were friends.
func (s *Service) RemoveFriend(ctx context.Context, email, friendEmail string) (bool, error) {
	userID, friendID, err := s.resolvePair(ctx, email, friendEmail)
	if err != nil {
		return false, fmt.Errorf("removing friend: %w", err)
	}
	removed, err := s.db.Friends().Remove(ctx, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("removing friend: %w", err)
	}
	return removed, nil
}

func (s *Service) resolvePair(ctx context.Context, email, friendEmail string) (int64, int64, error) {
	users := s.db.Users()

	userID, err := users.IDByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return 0, 0, ErrUserNotFound
	}
	if err != nil {
		return 0, 0, err
	}

	friendID, err := users.IDByEmail(ctx, friendEmail)
	if errors.Is(err, db.ErrNotFound) {
		return 0, 0, ErrFriendNotFound
	}
	if err != nil {
		return 0, 0, err
	}

	if userID == friendID {
		return 0, 0, ErrSelfFriend
	}
	return userID, friendID, nil
}

// GetUserDetails returns the admin view of one user.
func (s *Service) GetUserDetails(ctx context.Context, email string) (*UserDetails, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	d := newUserDetails(user)
	return &d, nil
}

// GetAllUsers returns the admin view of every user, ordered by id.
func (s *Service) GetAllUsers(ctx context.Context) ([]UserDetails, error) {
	users, err := s.db.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	details := make([]UserDetails, len(users))
	for i := range users {
		details[i] = newUserDetails(&users[i])
	}
	return details, nil
}

// UpdateUserRole changes a user's role.
func (s *Service) UpdateUserRole(ctx context.Context, email string, role db.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return s.updateUser(ctx, email, db.UserUpdate{Role: &role})
}

// UpdateUserDetails applies a partial admin edit.
func (s *Service) UpdateUserDetails(ctx context.Context, email string, u DetailsUpdate) error {
	if err := validation.Struct(&u); err != nil {
		return err
	}
	return s.updateUser(ctx, email, db.UserUpdate{
		DisplayName: u.DisplayName,
		FullName:    u.FullName,
		Age:         u.Age,
		Gender:      u.Gender,
		PhotoURL:    u.PhotoURL,
		Role:        u.Role,
	})
}

// UpdateAdminProfileWithPut replaces every editable field. Omitted fields
// are cleared.
func (s *Service) UpdateAdminProfileWithPut(ctx context.Context, email string, p AdminProfile) error {
	if err := validation.Struct(&p); err != nil {
		return err
	}
	err := s.db.Users().ReplaceProfile(ctx, &db.User{
		Email:       db.NormalizeEmail(email),
		DisplayName: p.DisplayName,
		FullName:    p.FullName,
		Age:         p.Age,
		Gender:      p.Gender,
		PhotoURL:    p.PhotoURL,
		Role:        p.Role,
	})
	if errors.Is(err, db.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("replacing profile: %w", err)
	}
	return nil
}

// DeleteUser removes the account. Friendships, watchlist entries and logs
// go with it.
func (s *Service) DeleteUser(ctx context.Context, email string) error {
	err := s.db.Users().Delete(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// SaveFeedback stores feedback from the user.
func (s *Service) SaveFeedback(ctx context.Context, email, message string, rating int) (*db.Feedback, error) {
	return s.records.SaveFeedback(ctx, email, records.FeedbackInput{
		Message: message,
		Rating:  rating,
	})
}

// GetUserActivity returns the user's activities, most recent first.
func (s *Service) GetUserActivity(ctx context.Context, email string) ([]db.Activity, error) {
	return s.records.GetActivities(ctx, email)
}

// LogActivity records an activity for the user.
func (s *Service) LogActivity(ctx context.Context, email string, in records.ActivityInput) (*db.Activity, error) {
	return s.records.LogActivity(ctx, email, in)
}

// UploadProfileImage records a local image path as the user's photo and
// returns the stored file URI. The file itself is not copied anywhere.
func (s *Service) UploadProfileImage(ctx context.Context, email, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty image path", validation.ErrInvalid)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving image path: %w", err)
	}

	uri := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	if err := s.updateUser(ctx, email, db.UserUpdate{PhotoURL: &uri}); err != nil {
		return "", err
	}
	return uri, nil
}

func (s *Service) updateUser(ctx context.Context, email string, u db.UserUpdate) error {
	err := s.db.Users().Update(ctx, email, u)
	if errors.Is(err, db.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}
