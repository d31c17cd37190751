package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsInvalidSpec(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.Register("not a cron spec", "bad", 0, func(ctx context.Context) error { return nil })
	require.Error(t, err)
}

func TestRegister_AcceptsStandardSpec(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.Register("0 3 * * *", "nightly", time.Minute, func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestScheduler_RunsRegisteredJob(t *testing.T) {
	s := New(zerolog.Nop())

	var calls atomic.Int32
	require.NoError(t, s.Register("@every 10ms", "tick", time.Second, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestScheduler_FailedJobDoesNotStopCadence(t *testing.T) {
	s := New(zerolog.Nop())

	var calls atomic.Int32
	require.NoError(t, s.Register("@every 10ms", "flaky", time.Second, func(ctx context.Context) error {
		calls.Add(1)
		return context.DeadlineExceeded
	}))

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("job did not keep running after failure")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
