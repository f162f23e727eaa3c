package retention

import (
	"context"
	"time"

	"github.com/novora/compliance-api/internal/system/log"
)

// Enforcer runs retention enforcement on a fixed interval until its context
// is cancelled. Errors are logged and the loop continues; a failed sweep is
// retried at the next tick.
type Enforcer struct {
	service  RetentionService
	interval time.Duration
	logger   *log.Logger
}

func NewEnforcer(service RetentionService, interval time.Duration) *Enforcer {
	return &Enforcer{
		service:  service,
		interval: interval,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RetentionEnforcer")),
	}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (e *Enforcer) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("Retention enforcement loop started", log.String("interval", e.interval.String()))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Retention enforcement loop stopped")
			return
		case <-ticker.C:
			enforced, err := e.service.EnforceRetentionPolicies(ctx)
			if err != nil {
				e.logger.Warn("Scheduled retention enforcement reported failures",
					log.String("description", err.ErrorDescription))
				continue
			}
			e.logger.Info("Scheduled retention enforcement completed", log.Int("enforced", enforced))
		}
	}
}
