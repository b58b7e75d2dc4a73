package inbound

import (
	"context"

	"github.com/xceltrack/xceltrack-api/internal/pkg/scheduler"
)

const JobSweepExpired = "otp.sweep_expired"

type sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type registrar interface {
	Register(name, spec string, job scheduler.Job) error
}

// RegisterCron schedules the expired-record sweep. An empty spec disables it.
func RegisterCron(s registrar, spec string, uc sweeper) error {
	if spec == "" {
		return nil
	}

	return s.Register(JobSweepExpired, spec, func(ctx context.Context) error {
		_, err := uc.SweepExpired(ctx)
		return err
	})
}
