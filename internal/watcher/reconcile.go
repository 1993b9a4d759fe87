package watcher

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bnema/autonet/pkg/docker"
)

// LabelTruthy evaluates an opt-in label value. Absent or empty means no, as
// do the usual negative spellings; any other value means attach. Deliberately
// permissive so `label: whatever` opts a container in.
func LabelTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// UnattachableMode reports whether a network mode rules out attach and detach
// operations: host and none have no attachable endpoints, and container:<id>
// shares another container's network namespace.
func UnattachableMode(mode string) bool {
	return mode == "host" || mode == "none" || strings.HasPrefix(mode, "container:")
}

// Reconcile brings one container's attachments in line with its labels. The
// container is re-inspected first so decisions never act on stale state.
// Failures are logged and absorbed: a broken container must not abort the
// sweep that found it, and transient errors retry naturally on the next
// trigger. reason tags the log lines with what prompted the pass.
func (w *Watcher) Reconcile(ctx context.Context, containerID, reason string) {
	snap, err := w.runtime.InspectContainer(ctx, containerID)
	if err != nil {
		if docker.IsNotFound(err) {
			log.Debug("Container disappeared before reconcile", "reason", reason, "container_id", docker.ShortID(containerID))
			return
		}
		log.Error("Failed to refresh container state", "reason", reason, "container_id", docker.ShortID(containerID), "error", err)
		return
	}

	if UnattachableMode(snap.NetworkMode) {
		if w.cache.Add(snap.ID) {
			log.Warn("Skipping container, network mode does not support attachments",
				"container", snap.Name, "id", snap.ShortID(), "network_mode", snap.NetworkMode)
		}
		return
	}

	log.Debug("Reconciling container", "reason", reason, "container", snap.Name, "id", snap.ShortID())

	for _, m := range w.cfg.Mappings {
		wantsAttach := LabelTruthy(snap.Labels[m.LabelKey])
		connected := snap.Connected(m.Network)

		switch {
		case wantsAttach && !connected:
			alias := snap.Labels[w.cfg.AliasLabel]
			if alias == "" {
				alias = snap.Name
			}
			alias = SanitizeAlias(alias, snap.Name)

			if err := w.runtime.ConnectNetwork(ctx, snap.ID, m.Network, []string{alias}); err != nil {
				log.Error("Failed to connect container to network",
					"reason", reason, "container", snap.Name, "network", m.Network, "index", m.Index, "error", err)
				continue
			}
			log.Info("Connected container to network",
				"container", snap.Name, "network", m.Network, "alias", alias, "index", m.Index)

		case !wantsAttach && connected && w.cfg.AutoDisconnect:
			if err := w.runtime.DisconnectNetwork(ctx, snap.ID, m.Network); err != nil {
				log.Error("Failed to disconnect container from network",
					"reason", reason, "container", snap.Name, "network", m.Network, "index", m.Index, "error", err)
				continue
			}
			log.Info("Disconnected container from network",
				"container", snap.Name, "network", m.Network, "index", m.Index)

		default:
			log.Debug("No change for container",
				"reason", reason, "container", snap.Name, "network", m.Network,
				"wants_attach", wantsAttach, "connected", connected)
		}
	}
}
