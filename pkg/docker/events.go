package docker

import (
	"context"
	"errors"

	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
)

// errEventStreamClosed surfaces a stream that ended without an explicit error.
var errEventStreamClosed = errors.New("event stream closed")

// Event is one normalized lifecycle event from the engine.
type Event struct {
	Type   string
	Status string
	ID     string
	Name   string
}

// Events opens the engine's event stream, filtered server-side to container
// events with one of the given statuses. Both returned channels are one-shot:
// after a value arrives on the error channel the stream is dead and a new
// call is needed. The event channel closes when the stream ends.
func (r *Runtime) Events(ctx context.Context, statuses []string) (<-chan Event, <-chan error) {
	f := filters.NewArgs()
	f.Add("type", "container")
	for _, status := range statuses {
		f.Add("event", status)
	}
	msgs, errs := r.cli.Events(ctx, events.ListOptions{Filters: f})

	out := make(chan Event)
	errOut := make(chan error, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				errOut <- ctx.Err()
				return
			case err, ok := <-errs:
				if !ok || err == nil {
					err = errEventStreamClosed
				}
				errOut <- err
				return
			case m, ok := <-msgs:
				if !ok {
					errOut <- errEventStreamClosed
					return
				}
				select {
				case out <- normalizeEvent(m):
				case <-ctx.Done():
					errOut <- ctx.Err()
					return
				}
			}
		}
	}()
	return out, errOut
}

// normalizeEvent maps a wire message to an Event, tolerating both the legacy
// status/id fields and their modern Action/Actor replacements.
func normalizeEvent(m events.Message) Event {
	ev := Event{
		Type:   string(m.Type),
		Status: m.Status, //nolint:staticcheck // legacy field still sent by daemons
		ID:     m.Actor.ID,
		Name:   m.Actor.Attributes["name"],
	}
	if ev.Status == "" {
		ev.Status = string(m.Action)
	}
	if ev.ID == "" {
		ev.ID = m.ID //nolint:staticcheck // legacy field still sent by daemons
	}
	return ev
}
