package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestStartInOrderStopInReverse(t *testing.T) {
	var order []string
	s := NewStartup(noopLogger(), 1)

	for _, name := range []string{"db", "cache", "broker"} {
		name := name
		s.AddDependency(Dependency{
			Name:  name,
			Start: func(context.Context) error { order = append(order, "start:"+name); return nil },
			Stop:  func(context.Context) error { order = append(order, "stop:"+name); return nil },
		})
	}

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, []string{
		"start:db", "start:cache", "start:broker",
		"stop:broker", "stop:cache", "stop:db",
	}, order)
}

func TestStartRetriesFailedDependency(t *testing.T) {
	attempts := 0
	s := NewStartup(noopLogger(), 3)
	s.AddDependency(Dependency{
		Name: "flaky",
		Start: func(context.Context) error {
			attempts++
			if attempts < 2 {
				return errors.New("not yet")
			}
			return nil
		},
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestStartDoesNotRestartStartedDependencies(t *testing.T) {
	firstStarts := 0
	s := NewStartup(noopLogger(), 3)
	s.AddDependency(Dependency{
		Name:  "stable",
		Start: func(context.Context) error { firstStarts++; return nil },
	})

	failures := 0
	s.AddDependency(Dependency{
		Name: "flaky",
		Start: func(context.Context) error {
			failures++
			if failures < 2 {
				return errors.New("not yet")
			}
			return nil
		},
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, firstStarts)
}

func TestStartGivesUpAfterMaxAttempts(t *testing.T) {
	s := NewStartup(noopLogger(), 2)
	s.AddDependency(Dependency{
		Name:  "broken",
		Start: func(context.Context) error { return errors.New("always down") },
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestStopSkipsNeverStarted(t *testing.T) {
	stopped := false
	s := NewStartup(noopLogger(), 1)
	s.AddDependency(Dependency{
		Name:  "unused",
		Start: func(context.Context) error { return nil },
		Stop:  func(context.Context) error { stopped = true; return nil },
	})

	// Stop before Start: nothing to do
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, stopped)
}
