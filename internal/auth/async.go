package auth

import (
	"context"

	"github.com/moodflix/moodflix/internal/async"
)

// Async runs selected Service calls on an executor so callers can wait on
// a future instead of blocking.
type Async struct {
	svc  *Service
	exec *async.Executor
}

// NewAsync wraps svc. The executor is owned by the caller.
func NewAsync(svc *Service, exec *async.Executor) *Async {
	return &Async{svc: svc, exec: exec}
}

// GetUserDetailsAsync is GetUserDetails on the worker pool.
func (a *Async) GetUserDetailsAsync(ctx context.Context, email string) *async.Future[*UserDetails] {
	return async.Submit(ctx, a.exec, func(ctx context.Context) (*UserDetails, error) {
		return a.svc.GetUserDetails(ctx, email)
	})
}

// LoginUserAsync is Login on the worker pool.
func (a *Async) LoginUserAsync(ctx context.Context, email, password string) *async.Future[*AuthResponse] {
	return async.Submit(ctx, a.exec, func(ctx context.Context) (*AuthResponse, error) {
		return a.svc.Login(ctx, email, password)
	})
}
