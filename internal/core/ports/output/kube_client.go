package ports

import (
	"context"

	"dashboard-packaging-service/internal/core/domain"
)

// KubeDeployment represents the result of a Kubernetes deployment
type KubeDeployment struct {
	ExternalID string // K8s resource UID
	URL        string // service URL (if ready)
}

// KubeStatus represents the status of a Kubernetes Deployment
type KubeStatus struct {
	Ready             bool
	AvailableReplicas int64
	Error             string
}

// KubeClient defines the contract for launching built images on Kubernetes
type KubeClient interface {
	// Deploy creates an apps/v1 Deployment running the built image with
	// liveness/readiness probes on the recipe health path
	Deploy(ctx context.Context, namespace string, dep *domain.Deployment, build *domain.ImageBuild) (*KubeDeployment, error)

	// Undeploy deletes the Deployment from Kubernetes
	Undeploy(ctx context.Context, namespace, name string) error

	// GetStatus retrieves current deployment status from Kubernetes
	GetStatus(ctx context.Context, namespace, name string) (*KubeStatus, error)

	// IsAvailable checks if Kubernetes integration is enabled and configured
	IsAvailable() bool
}
