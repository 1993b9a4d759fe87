package watcher

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/bnema/autonet/internal/config"
	"github.com/bnema/autonet/pkg/docker"
)

// reconnectBackoff is how long the event loop waits before re-opening a
// failed event stream.
const reconnectBackoff = 5 * time.Second

// Runtime is the slice of the container engine the watcher needs. Satisfied
// by *docker.Runtime; tests substitute a fake.
type Runtime interface {
	ListContainers(ctx context.Context, all bool) ([]docker.Snapshot, error)
	InspectContainer(ctx context.Context, containerID string) (*docker.Snapshot, error)
	ConnectNetwork(ctx context.Context, containerID, network string, aliases []string) error
	DisconnectNetwork(ctx context.Context, containerID, network string) error
	Events(ctx context.Context, statuses []string) (<-chan docker.Event, <-chan error)
}

// Watcher keeps container network attachments in line with container labels.
// One instance is shared by the initial sweep, the event loop and the
// periodic rescan; the skip cache is its only mutable state.
type Watcher struct {
	cfg     *config.Config
	runtime Runtime
	cache   *SkipCache
	limiter *rate.Limiter

	// Injectable for tests; production uses the defaults.
	backoff time.Duration
	sleep   func(time.Duration)
}

func New(cfg *config.Config, runtime Runtime) *Watcher {
	limit := rate.Inf
	if cfg.SweepRPS > 0 {
		limit = rate.Limit(cfg.SweepRPS)
	}
	return &Watcher{
		cfg:     cfg,
		runtime: runtime,
		cache:   NewSkipCache(),
		limiter: rate.NewLimiter(limit, 1),
		backoff: reconnectBackoff,
		sleep:   time.Sleep,
	}
}

// InitialSweep reconciles every container once at startup so state that
// drifted while the watcher was down is repaired before events take over.
func (w *Watcher) InitialSweep(ctx context.Context) {
	if !w.cfg.InitialAttach {
		log.Info("Initial sweep disabled by configuration")
		return
	}

	log.Info("Running initial sweep", "running_only", w.cfg.InitialRunningOnly)
	containers, err := w.runtime.ListContainers(ctx, !w.cfg.InitialRunningOnly)
	if err != nil {
		log.Error("Failed to list containers for initial sweep", "error", err)
		return
	}

	for _, c := range containers {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		w.Reconcile(ctx, c.ID, "initial")
	}
	log.Info("Initial sweep complete", "containers", len(containers))
}

// RescanLoop re-reconciles every container, stopped ones included, at a fixed
// interval, catching anything the event stream missed. Runs until ctx is
// cancelled, which in production is never.
func (w *Watcher) RescanLoop(ctx context.Context) {
	interval := w.cfg.RescanInterval()
	if interval <= 0 {
		log.Info("Periodic rescan disabled")
		return
	}

	log.Info("Periodic rescan enabled", "interval", interval)
	for {
		w.sleep(interval)
		if ctx.Err() != nil {
			return
		}

		log.Debug("Rescanning containers")
		containers, err := w.runtime.ListContainers(ctx, true)
		if err != nil {
			log.Error("Failed to list containers for rescan", "error", err)
			continue
		}
		for _, c := range containers {
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.Reconcile(ctx, c.ID, "rescan")
		}
	}
}
