package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reclassifier rewrites stored tiers that disagree with the active policy
type Reclassifier interface {
	Reclassify(ctx context.Context) (int, error)
}

// ReclassifyJob periodically brings stored tiers back in line with the
// active policy. Replicas sharing one database can otherwise drift while a
// policy change is rolling out.
type ReclassifyJob struct {
	svc    Reclassifier
	logger *zap.Logger
}

func NewReclassifyJob(svc Reclassifier, logger *zap.Logger) *ReclassifyJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReclassifyJob{svc: svc, logger: logger}
}

// Run performs a single pass
func (j *ReclassifyJob) Run(ctx context.Context) (int, error) {
	start := time.Now()
	changed, err := j.svc.Reclassify(ctx)
	if err != nil {
		j.logger.Error("reclassification failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return changed, err
	}

	j.logger.Debug("reclassification complete",
		zap.Int("changed", changed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return changed, nil
}

// RunScheduled runs the job every interval until ctx is cancelled. Failed
// passes are logged and retried on the next tick.
func (j *ReclassifyJob) RunScheduled(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = j.Run(ctx)
		case <-ctx.Done():
			j.logger.Info("stopping scheduled reclassification")
			return nil
		}
	}
}
