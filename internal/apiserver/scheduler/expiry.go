// Package scheduler runs periodic maintenance jobs of the api server
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SubscriptionStore expires lapsed subscriptions
type SubscriptionStore interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error)
}

// Invalidator drops cached companies
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}

// ExpiryScheduler marks subscriptions whose end date has passed as expired,
// so listings and usage reports show the same status the gate enforces
type ExpiryScheduler struct {
	logger   *zap.Logger
	store    SubscriptionStore
	cache    Invalidator
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// ExpirySchedulerConfig holds configuration for the expiry scheduler
type ExpirySchedulerConfig struct {
	Store    SubscriptionStore
	Cache    Invalidator // optional
	Interval time.Duration
	Logger   *zap.Logger
}

// NewExpiryScheduler creates a new expiry scheduler
func NewExpiryScheduler(cfg ExpirySchedulerConfig) *ExpiryScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &ExpiryScheduler{
		logger:   cfg.Logger.Named("scheduler.expiry"),
		store:    cfg.Store,
		cache:    cfg.Cache,
		interval: cfg.Interval,
		now:      time.Now,
	}
}

// Start sweeps once and then on every interval until ctx ends or Stop is called
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("expiry scheduler is already running")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	s.logger.Info("starting expiry scheduler", zap.Duration("interval", s.interval))
	go s.loop(ctx, s.done)
	return nil
}

// Stop ends the loop and waits for an in-flight sweep
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("expiry scheduler stopped")
}

func (s *ExpiryScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *ExpiryScheduler) sweepAndLog(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("failed to expire subscriptions", zap.Error(err))
	}
}

// Sweep runs one expiry pass and returns the tenants it expired
func (s *ExpiryScheduler) Sweep(ctx context.Context) ([]string, error) {
	ids, err := s.store.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if s.cache != nil {
			s.cache.Invalidate(ctx, id)
		}
		s.logger.Info("subscription expired", zap.String("tenant_id", id))
	}
	return ids, nil
}
