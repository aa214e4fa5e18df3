package ports

import (
	"context"

	"github.com/google/uuid"

	"dashboard-packaging-service/internal/core/domain"
)

// ============================================================================
// Image Build Repository
// ============================================================================

// ImageBuildRepository defines the contract for image build persistence
type ImageBuildRepository interface {
	// Create creates a new image build record
	Create(ctx context.Context, build *domain.ImageBuild) error

	// GetByID retrieves an image build by ID
	GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.ImageBuild, error)

	// GetByName retrieves an image build by name
	GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.ImageBuild, error)

	// Update updates an image build
	Update(ctx context.Context, projectID uuid.UUID, build *domain.ImageBuild) error

	// Delete deletes an image build
	Delete(ctx context.Context, projectID, id uuid.UUID) error

	// List lists image builds with filtering
	List(ctx context.Context, filter ImageBuildFilter) ([]*domain.ImageBuild, int, error)
}

// ImageBuildFilter defines filters for listing image builds
type ImageBuildFilter struct {
	ProjectID uuid.UUID
	Status    string
	Search    string
	SortBy    string
	Order     string
	Limit     int
	Offset    int
}

// ============================================================================
// Deployment Repository
// ============================================================================

// DeploymentRepository defines the contract for deployment persistence
type DeploymentRepository interface {
	// Create creates a new deployment record
	Create(ctx context.Context, dep *domain.Deployment) error

	// GetByID retrieves a deployment by ID
	GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Deployment, error)

	// GetByExternalID retrieves a deployment by container ID or K8s resource UID
	GetByExternalID(ctx context.Context, projectID uuid.UUID, externalID string) (*domain.Deployment, error)

	// Update updates a deployment
	Update(ctx context.Context, projectID uuid.UUID, dep *domain.Deployment) error

	// Delete deletes a deployment
	Delete(ctx context.Context, projectID, id uuid.UUID) error

	// List lists deployments with filtering
	List(ctx context.Context, filter DeploymentFilter) ([]*domain.Deployment, int, error)

	// ListRunning lists running deployments across all projects (health sweep)
	ListRunning(ctx context.Context) ([]*domain.Deployment, error)

	// CountByBuild counts deployments referencing an image build
	CountByBuild(ctx context.Context, projectID, buildID uuid.UUID) (int, error)
}

// DeploymentFilter defines filters for listing deployments
type DeploymentFilter struct {
	ProjectID    uuid.UUID
	ImageBuildID *uuid.UUID
	Target       string
	CurrentState string
	SortBy       string
	Order        string
	Limit        int
	Offset       int
}
