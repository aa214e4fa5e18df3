package ports

import "context"

// LaunchSpec describes one container to launch from a built image. The
// recipe port is published on the recipe bind address; no other port is
// ever opened.
type LaunchSpec struct {
	Name        string
	Image       string
	Port        int
	BindAddress string
	Labels      map[string]string
}

// ContainerStatus is the observed state of a launched container
type ContainerStatus struct {
	Running  bool
	Health   string // daemon healthcheck status: healthy, unhealthy, starting, or empty
	ExitCode int
	Error    string
}

// ContainerRuntime defines the contract for launching built images as
// supervised containers
type ContainerRuntime interface {
	// Launch creates and starts one foreground container, returning its ID
	Launch(ctx context.Context, spec LaunchSpec) (string, error)

	// Stop stops the container; exit codes pass through untouched
	Stop(ctx context.Context, containerID string) error

	// Remove deletes the stopped container
	Remove(ctx context.Context, containerID string) error

	// Status inspects the container
	Status(ctx context.Context, containerID string) (*ContainerStatus, error)

	// IsAvailable checks if the container runtime is reachable
	IsAvailable() bool
}
