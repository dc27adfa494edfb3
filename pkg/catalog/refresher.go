package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Reloader is a catalog whose contents can be re-read from its source.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Refresher reloads a catalog on a cron schedule so that long-running
// processes pick up new services without a restart.
type Refresher struct {
	scheduler *cron.Cron
	logger    *slog.Logger
}

// NewRefresher schedules reloads of catalog. spec accepts the standard cron
// format and descriptors such as "@every 1m".
func NewRefresher(ctx context.Context, logger *slog.Logger, catalog Reloader, spec string) (*Refresher, error) {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(spec, func() {
		if err := catalog.Reload(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to reload service catalog", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid catalog refresh schedule %q: %w", spec, err)
	}

	return &Refresher{scheduler: scheduler, logger: logger}, nil
}

// Start begins the schedule in its own goroutine.
func (r *Refresher) Start() {
	r.scheduler.Start()
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *Refresher) Stop() {
	<-r.scheduler.Stop().Done()
}
