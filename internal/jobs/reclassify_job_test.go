package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReclassifier struct {
	calls atomic.Int32
	err   error
}

func (c *countingReclassifier) Reclassify(context.Context) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestReclassifyJob_Run(t *testing.T) {
	svc := &countingReclassifier{}
	changed, err := NewReclassifyJob(svc, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	svc.err = errors.New("db down")
	_, err = NewReclassifyJob(svc, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestReclassifyJob_RunScheduledStopsOnCancel(t *testing.T) {
	svc := &countingReclassifier{err: errors.New("transient")}
	job := NewReclassifyJob(svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.RunScheduled(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return svc.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunScheduled did not return after cancel")
	}
}
