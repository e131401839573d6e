package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
)

// Repository stores per-user counters. Increment and Set create the
// document when it does not exist yet.
type Repository interface {
	Get(ctx context.Context, email string) (*domain.UserAnalytics, error)
	Create(ctx context.Context, a *domain.UserAnalytics) error
	Increment(ctx context.Context, email, group, name string, at time.Time) (*domain.UserAnalytics, error)
	Set(ctx context.Context, email, group, name string, value int, at time.Time) (*domain.UserAnalytics, error)
}

type Service interface {
	Get(ctx context.Context, email string) (*domain.UserAnalytics, error)
	Increment(ctx context.Context, email, group, name string) (*domain.UserAnalytics, error)
	Set(ctx context.Context, email, group, name string, value int) (*domain.UserAnalytics, error)
}

type service struct {
	repo  Repository
	clock clockwork.Clock
}

func NewService(repo Repository, clock clockwork.Clock) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{repo: repo, clock: clock}
}

// Get returns the user's counters, creating an all-zero document on first use.
func (s *service) Get(ctx context.Context, email string) (*domain.UserAnalytics, error) {
	a, err := s.repo.Get(ctx, email)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	a = &domain.UserAnalytics{Email: email, LastActivity: s.clock.Now().UTC()}
	err = s.repo.Create(ctx, a)
	if errors.Is(err, domain.ErrConflict) {
		// Created concurrently by another request.
		return s.repo.Get(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("created analytics document", "email", email)
	return a, nil
}

func (s *service) Increment(ctx context.Context, email, group, name string) (*domain.UserAnalytics, error) {
	if !domain.ValidCounter(group, name) {
		return nil, fmt.Errorf("invalid %s type %q: %w", group, name, domain.ErrBadRequest)
	}
	return s.repo.Increment(ctx, email, group, name, s.clock.Now().UTC())
}

// Set overwrites a counter. Click counters only move through Increment.
func (s *service) Set(ctx context.Context, email, group, name string, value int) (*domain.UserAnalytics, error) {
	if group == domain.AnalyticsClicks || !domain.ValidCounter(group, name) {
		return nil, fmt.Errorf("invalid %s type %q: %w", group, name, domain.ErrBadRequest)
	}
	if value < 0 {
		return nil, domain.NewValidationError("value must be a non-negative integer")
	}
	return s.repo.Set(ctx, email, group, name, value, s.clock.Now().UTC())
}
