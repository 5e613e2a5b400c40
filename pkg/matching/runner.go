package matching

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
)

// Runner executes matching passes on a fixed interval. Passes never overlap;
// a pass that outlives the interval simply delays the next tick.
type Runner struct {
	engine   *Engine
	interval time.Duration
	logger   ectologger.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewRunner creates a runner for the given engine
func NewRunner(engine *Engine, interval time.Duration, logger ectologger.Logger) *Runner {
	return &Runner{
		engine:   engine,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs passes until Stop is called. Blocks; run it in a goroutine.
func (r *Runner) Start(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.engine.RunPass(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.WithContext(ctx).WithError(err).Error("Scheduled matching pass failed")
			}
		}
	}
}

// Stop signals the runner and waits for the in-flight pass to finish
func (r *Runner) Stop() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.done
}
