// Package startup brings external dependencies up in order with retries and
// tears them down in reverse on shutdown.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

// Dependency is one external resource the server needs before serving.
type Dependency struct {
	Name  string
	Start func(ctx context.Context) error
	Stop  func(ctx context.Context) error
}

// Startup starts dependencies in registration order. A failure restarts the
// whole sequence after a backoff, up to maxAttempts.
type Startup struct {
	dependencies []Dependency
	started      map[string]bool
	logger       ectologger.Logger
	maxAttempts  int
}

func NewStartup(logger ectologger.Logger, maxAttempts int) *Startup {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Startup{
		logger:      logger,
		started:     make(map[string]bool),
		maxAttempts: maxAttempts,
	}
}

func (s *Startup) AddDependency(dep Dependency) {
	s.dependencies = append(s.dependencies, dep)
}

func (s *Startup) Start(ctx context.Context) error {
	var lastErr error

	backoff := time.Second
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

		lastErr = s.startAll(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == s.maxAttempts {
			break
		}

		s.logger.Infof("Retrying in %s (attempt %d/%d)", backoff, attempt, s.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("startup failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Startup) startAll(ctx context.Context) error {
	for _, dep := range s.dependencies {
		if s.started[dep.Name] {
			continue
		}

		s.logger.WithField("dependency", dep.Name).Infof("Starting dependency '%s'", dep.Name)
		if err := dep.Start(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", dep.Name).Errorf("Failed to start dependency '%s'", dep.Name)
			return err
		}
		s.started[dep.Name] = true
	}
	return nil
}

// Stop tears dependencies down in reverse registration order. It keeps going
// past individual failures and returns the first error seen.
func (s *Startup) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(s.dependencies) - 1; i >= 0; i-- {
		dep := s.dependencies[i]
		if !s.started[dep.Name] || dep.Stop == nil {
			continue
		}

		s.logger.WithField("dependency", dep.Name).Infof("Stopping dependency '%s'", dep.Name)
		if err := dep.Stop(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", dep.Name).Errorf("Failed to stop dependency '%s'", dep.Name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.started[dep.Name] = false
	}
	return firstErr
}
