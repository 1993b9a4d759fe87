package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Snapshot is the attachment-relevant view of one container. The raw engine
// types stay behind this boundary; callers only ever see Snapshot.
type Snapshot struct {
	ID          string
	Name        string
	Labels      map[string]string
	NetworkMode string
	Networks    map[string]struct{}
}

// Connected reports whether the container is attached to the named network.
func (s *Snapshot) Connected(name string) bool {
	_, ok := s.Networks[name]
	return ok
}

// ShortID returns the 12-character short form of the container ID.
func (s *Snapshot) ShortID() string {
	return ShortID(s.ID)
}

// ShortID truncates a container ID to the familiar 12-character form.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Runtime talks to the container engine through the Docker API.
type Runtime struct {
	cli *client.Client
}

// NewRuntime creates a runtime from the environment (DOCKER_HOST and friends),
// negotiating the API version with the daemon.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeWithClient wraps an existing Docker client. Tests use this to
// point the runtime at a fake daemon.
func NewRuntimeWithClient(cli *client.Client) *Runtime {
	return &Runtime{cli: cli}
}

// Ping verifies the daemon is reachable.
func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("cannot reach Docker daemon: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Runtime) Close() error {
	return r.cli.Close()
}

// IsNotFound reports whether err means the entity no longer exists. Lifecycle
// races make this a normal condition, not a failure.
func IsNotFound(err error) bool {
	return cerrdefs.IsNotFound(err)
}

// ListContainers returns a snapshot for every container, or only running ones
// when all is false.
func (r *Runtime) ListContainers(ctx context.Context, all bool) ([]Snapshot, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(containers))
	for _, c := range containers {
		snapshots = append(snapshots, summarySnapshot(c))
	}
	return snapshots, nil
}

// InspectContainer fetches a fresh snapshot of one container.
func (r *Runtime) InspectContainer(ctx context.Context, containerID string) (*Snapshot, error) {
	resp, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", ShortID(containerID), err)
	}
	snap := inspectSnapshot(resp)
	return &snap, nil
}

// ConnectNetwork attaches a container to a network under the given aliases.
func (r *Runtime) ConnectNetwork(ctx context.Context, containerID, networkName string, aliases []string) error {
	settings := &network.EndpointSettings{Aliases: aliases}
	if err := r.cli.NetworkConnect(ctx, networkName, containerID, settings); err != nil {
		return fmt.Errorf("failed to connect container %s to network %s: %w", ShortID(containerID), networkName, err)
	}
	return nil
}

// DisconnectNetwork detaches a container from a network.
func (r *Runtime) DisconnectNetwork(ctx context.Context, containerID, networkName string) error {
	if err := r.cli.NetworkDisconnect(ctx, networkName, containerID, false); err != nil {
		return fmt.Errorf("failed to disconnect container %s from network %s: %w", ShortID(containerID), networkName, err)
	}
	return nil
}

// ContainerPorts returns a human-readable summary of the container's port
// bindings, in stable order, e.g. "0.0.0.0:8080->80/tcp, 443/tcp".
func (r *Runtime) ContainerPorts(ctx context.Context, containerID string) (string, error) {
	resp, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("failed to inspect container %s: %w", ShortID(containerID), err)
	}
	if resp.NetworkSettings == nil || len(resp.NetworkSettings.Ports) == 0 {
		return "", nil
	}

	ports := make([]nat.Port, 0, len(resp.NetworkSettings.Ports))
	for p := range resp.NetworkSettings.Ports {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool {
		if ports[i].Int() != ports[j].Int() {
			return ports[i].Int() < ports[j].Int()
		}
		return ports[i].Proto() < ports[j].Proto()
	})

	var parts []string
	for _, p := range ports {
		bindings := resp.NetworkSettings.Ports[p]
		if len(bindings) == 0 {
			parts = append(parts, string(p))
			continue
		}
		for _, b := range bindings {
			parts = append(parts, fmt.Sprintf("%s:%s->%s", b.HostIP, b.HostPort, p))
		}
	}
	return strings.Join(parts, ", "), nil
}

func summarySnapshot(c container.Summary) Snapshot {
	snap := Snapshot{
		ID:          c.ID,
		Labels:      c.Labels,
		NetworkMode: c.HostConfig.NetworkMode,
		Networks:    make(map[string]struct{}),
	}
	if snap.Labels == nil {
		snap.Labels = make(map[string]string)
	}
	if len(c.Names) > 0 {
		snap.Name = strings.TrimPrefix(c.Names[0], "/")
	}
	if c.NetworkSettings != nil {
		for name := range c.NetworkSettings.Networks {
			snap.Networks[name] = struct{}{}
		}
	}
	return snap
}

// inspectSnapshot tolerates partial inspect responses; every nested pointer
// the daemon may omit is checked before use.
func inspectSnapshot(resp container.InspectResponse) Snapshot {
	snap := Snapshot{
		Labels:   make(map[string]string),
		Networks: make(map[string]struct{}),
	}
	if resp.ContainerJSONBase != nil {
		snap.ID = resp.ID
		snap.Name = strings.TrimPrefix(resp.Name, "/")
		if resp.HostConfig != nil {
			snap.NetworkMode = string(resp.HostConfig.NetworkMode)
		}
	}
	if resp.Config != nil && resp.Config.Labels != nil {
		snap.Labels = resp.Config.Labels
	}
	if resp.NetworkSettings != nil {
		for name := range resp.NetworkSettings.Networks {
			snap.Networks[name] = struct{}{}
		}
	}
	return snap
}
