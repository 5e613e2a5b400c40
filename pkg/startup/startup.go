// Package startup sequences service dependencies so that each one is
// started after everything it depends on, with retries across the whole
// sequence when a dependency is not yet reachable.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

type StartupDependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Startup struct {
	logger      ectologger.Logger
	order       []string
	byName      map[string]StartupDependency
	started     map[string]bool
	startOrder  []string
	maxAttempts int
}

func NewStartup(logger ectologger.Logger, maxAttempts int) *Startup {
	return &Startup{
		logger:      logger,
		byName:      make(map[string]StartupDependency),
		started:     make(map[string]bool),
		maxAttempts: maxAttempts,
	}
}

// AddDependency registers a dependency. Registration order is the fallback
// start order for dependencies with no DependsOn relationship.
func (s *Startup) AddDependency(dep StartupDependency) {
	name := dep.GetName()
	if _, ok := s.byName[name]; !ok {
		s.order = append(s.order, name)
	}
	s.byName[name] = dep
}

// Start brings every registered dependency up. On failure the whole sequence
// is retried with fibonacci backoff; dependencies already started are not
// started again.
func (s *Startup) Start(ctx context.Context) error {
	var lastErr error
	prev, wait := 0, 1

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.startAll(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == s.maxAttempts {
			break
		}

		s.logger.WithError(lastErr).Warnf("Startup attempt %d/%d failed, retrying in %ds", attempt, s.maxAttempts, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(wait) * time.Second):
		}
		prev, wait = wait, prev+wait
	}

	return fmt.Errorf("startup failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Startup) startAll(ctx context.Context) error {
	for _, name := range s.order {
		if err := s.startOne(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Startup) startOne(ctx context.Context, name string) error {
	if s.started[name] {
		return nil
	}
	dep, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("unknown startup dependency %q", name)
	}

	for _, upstream := range dep.DependsOn() {
		if err := s.startOne(ctx, upstream); err != nil {
			return err
		}
	}

	s.logger.WithField("dependency", name).Infof("Starting %s", name)
	if err := dep.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	s.started[name] = true
	s.startOrder = append(s.startOrder, name)
	return nil
}

// Stop shuts down started dependencies in the reverse of the order they
// came up. Errors are logged and the remaining dependencies are still
// stopped; the first error is returned.
func (s *Startup) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(s.startOrder) - 1; i >= 0; i-- {
		name := s.startOrder[i]
		s.logger.WithField("dependency", name).Infof("Stopping %s", name)
		if err := s.byName[name].Stop(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Errorf("Failed to stop %s", name)
			if firstErr == nil {
				firstErr = err
			}
		}
		s.started[name] = false
	}
	s.startOrder = nil
	return firstErr
}
