// Package auth manages moodflix accounts: signup and login, profiles,
// friendships and the admin user operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/moodflix/moodflix/internal/db"
	"github.com/moodflix/moodflix/internal/logging"
	"github.com/moodflix/moodflix/internal/records"
	"github.com/moodflix/moodflix/internal/validation"
)

// DefaultBcryptCost is the hashing cost used unless WithBcryptCost is given.
const DefaultBcryptCost = bcrypt.DefaultCost

var (
	// ErrUserExists is returned by Signup when the email is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when the acting user does not exist.
	// It is the same value records reports.
	ErrUserNotFound = records.ErrUserNotFound

	// ErrFriendNotFound is returned when the other side of a friendship
	// does not exist.
	ErrFriendNotFound = errors.New("friend not found")

	// ErrSelfFriend is returned when a user tries to befriend themselves.
	ErrSelfFriend = errors.New("cannot add yourself as a friend")

	// ErrInvalidCredentials is returned by Login on a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole is returned for roles other than user and admin.
	ErrInvalidRole = errors.New("invalid role")
)

// SignupRequest holds the fields accepted at signup.
type SignupRequest struct {
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	DisplayName string  `json:"displayName" validate:"max=100"`
	Role        db.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

// AuthResponse is returned by Signup and Login.
type AuthResponse struct {
	LocalID     string  `json:"localId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	IDToken     string  `json:"idToken"`
	Registered  bool    `json:"registered"`
	Role        db.Role `json:"role,omitempty"`
}

// Service handles account operations.
type Service struct {
	db         *db.DB
	tokens     *Tokens
	records    *records.Service
	bcryptCost int
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithRecords shares an existing records service.
func WithRecords(r *records.Service) Option {
	return func(s *Service) {
		if r != nil {
			s.records = r
		}
	}
}

// New creates a new auth service.
func New(database *db.DB, tokens *Tokens, opts ...Option) *Service {
	s := &Service{
		db:         database,
		tokens:     tokens,
		bcryptCost: DefaultBcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.records == nil {
		s.records = records.New(database)
	}
	return s
}

// Tokens returns the token issuer used by the service.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Signup creates an account and returns a signed-in response.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Email = db.NormalizeEmail(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	exists, err := s.db.Users().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("signup: hashing password: %w", err)
	}

	user := &db.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		DisplayName:  req.DisplayName,
	}
	if user.Role == "" {
		user.Role = db.RoleUser
	}
	if user.DisplayName == "" {
		user.DisplayName, _, _ = strings.Cut(req.Email, "@")
	}

	// The unique index catches a concurrent signup for the same email.
	err = s.db.Users().Create(ctx, user)
	if errors.Is(err, db.ErrUserExists) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	logging.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user signed up")
	return s.respond(user)
}

// Login checks the password and returns a signed-in response.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = db.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.db.Users().GetByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		logging.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: comparing password: %w", err)
	}

	return s.respond(user)
}

func (s *Service) respond(user *db.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		LocalID:     strconv.FormatInt(user.ID, 10),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IDToken:     token,
		Registered:  true,
		Role:        user.Role,
	}, nil
}

// GetUserByEmail returns the account for email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	user, err := s.db.Users().GetByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

