package watcher

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/bnema/autonet/pkg/docker"
)

// relevantStatuses are the lifecycle transitions that can change what a
// container wants attached or has attached.
var relevantStatuses = []string{"start", "restart", "die", "stop", "destroy", "update", "rename"}

func relevantStatus(status string) bool {
	for _, s := range relevantStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// EventLoop consumes the engine's lifecycle event stream and reconciles
// containers as events arrive. Any stream-level failure moves the loop into
// recovery: wait out the backoff, re-open the stream, resume. It never gives
// up; the daemon being down for a minute must not kill the watcher.
func (w *Watcher) EventLoop(ctx context.Context) {
	log.Info("Listening for container events", "statuses", relevantStatuses)
	for {
		events, errs := w.runtime.Events(ctx, relevantStatuses)
		w.stream(ctx, events, errs)
		if ctx.Err() != nil {
			return
		}

		w.sleep(w.backoff)
		if ctx.Err() != nil {
			return
		}
		log.Info("Re-establishing container event stream")
	}
}

// stream drains one event stream until it fails or ctx ends.
func (w *Watcher) stream(ctx context.Context, events <-chan docker.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			log.Error("Container event stream failed", "error", err)
			return
		case ev, ok := <-events:
			if !ok {
				log.Error("Container event stream closed")
				return
			}
			w.handleEvent(ctx, ev)
		}
	}
}

// handleEvent filters one event and dispatches reconciliation. Events racing
// with container removal are expected and dropped quietly.
func (w *Watcher) handleEvent(ctx context.Context, ev docker.Event) {
	if ev.Type != "container" || ev.ID == "" || !relevantStatus(ev.Status) {
		return
	}

	// A destroyed container cannot be reconciled; just forget it so a future
	// container reusing the name warns again.
	if ev.Status == "destroy" {
		w.cache.Remove(ev.ID)
		return
	}

	if _, err := w.runtime.InspectContainer(ctx, ev.ID); err != nil {
		if docker.IsNotFound(err) {
			log.Debug("Container already gone", "status", ev.Status, "container_id", docker.ShortID(ev.ID))
			return
		}
		log.Error("Failed to fetch container for event", "status", ev.Status, "container_id", docker.ShortID(ev.ID), "error", err)
		return
	}

	log.Debug("Handling container event", "status", ev.Status, "container", ev.Name, "container_id", docker.ShortID(ev.ID))
	w.Reconcile(ctx, ev.ID, "event:"+ev.Status)
}
