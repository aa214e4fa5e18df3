package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
)

// MockImageBuildRepo is a mock of ImageBuildRepository.
type MockImageBuildRepo struct {
	mock.Mock
}

func (m *MockImageBuildRepo) Create(ctx context.Context, build *domain.ImageBuild) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockImageBuildRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.ImageBuild, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImageBuild), args.Error(1)
}

func (m *MockImageBuildRepo) GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.ImageBuild, error) {
	args := m.Called(ctx, projectID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImageBuild), args.Error(1)
}

func (m *MockImageBuildRepo) Update(ctx context.Context, projectID uuid.UUID, build *domain.ImageBuild) error {
	args := m.Called(ctx, projectID, build)
	return args.Error(0)
}

func (m *MockImageBuildRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

func (m *MockImageBuildRepo) List(ctx context.Context, filter ports.ImageBuildFilter) ([]*domain.ImageBuild, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ImageBuild), args.Int(1), args.Error(2)
}

// MockDeploymentRepo is a mock of DeploymentRepository.
type MockDeploymentRepo struct {
	mock.Mock
}

func (m *MockDeploymentRepo) Create(ctx context.Context, dep *domain.Deployment) error {
	args := m.Called(ctx, dep)
	return args.Error(0)
}

func (m *MockDeploymentRepo) GetByID(ctx context.Context, projectID, id uuid.UUID) (*domain.Deployment, error) {
	args := m.Called(ctx, projectID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentRepo) GetByExternalID(ctx context.Context, projectID uuid.UUID, externalID string) (*domain.Deployment, error) {
	args := m.Called(ctx, projectID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentRepo) Update(ctx context.Context, projectID uuid.UUID, dep *domain.Deployment) error {
	args := m.Called(ctx, projectID, dep)
	return args.Error(0)
}

func (m *MockDeploymentRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

func (m *MockDeploymentRepo) List(ctx context.Context, filter ports.DeploymentFilter) ([]*domain.Deployment, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Deployment), args.Int(1), args.Error(2)
}

func (m *MockDeploymentRepo) ListRunning(ctx context.Context) ([]*domain.Deployment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deployment), args.Error(1)
}

func (m *MockDeploymentRepo) CountByBuild(ctx context.Context, projectID, buildID uuid.UUID) (int, error) {
	args := m.Called(ctx, projectID, buildID)
	return args.Int(0), args.Error(1)
}

// MockImageBuilder is a mock of ImageBuilder.
type MockImageBuilder struct {
	mock.Mock
}

func (m *MockImageBuilder) Build(ctx context.Context, contextDir, dockerfile, tag string) (*ports.ImageRef, error) {
	args := m.Called(ctx, contextDir, dockerfile, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ImageRef), args.Error(1)
}

// MockContainerRuntime is a mock of ContainerRuntime.
type MockContainerRuntime struct {
	mock.Mock
	Available bool
}

func (m *MockContainerRuntime) Launch(ctx context.Context, spec ports.LaunchSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockContainerRuntime) Stop(ctx context.Context, containerID string) error {
	args := m.Called(ctx, containerID)
	return args.Error(0)
}

func (m *MockContainerRuntime) Remove(ctx context.Context, containerID string) error {
	args := m.Called(ctx, containerID)
	return args.Error(0)
}

func (m *MockContainerRuntime) Status(ctx context.Context, containerID string) (*ports.ContainerStatus, error) {
	args := m.Called(ctx, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ContainerStatus), args.Error(1)
}

func (m *MockContainerRuntime) IsAvailable() bool {
	return m.Available
}

// MockKubeClient is a mock of KubeClient.
type MockKubeClient struct {
	mock.Mock
	Available bool
}

func (m *MockKubeClient) Deploy(ctx context.Context, namespace string, dep *domain.Deployment, build *domain.ImageBuild) (*ports.KubeDeployment, error) {
	args := m.Called(ctx, namespace, dep, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.KubeDeployment), args.Error(1)
}

func (m *MockKubeClient) Undeploy(ctx context.Context, namespace, name string) error {
	args := m.Called(ctx, namespace, name)
	return args.Error(0)
}

func (m *MockKubeClient) GetStatus(ctx context.Context, namespace, name string) (*ports.KubeStatus, error) {
	args := m.Called(ctx, namespace, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.KubeStatus), args.Error(1)
}

func (m *MockKubeClient) IsAvailable() bool {
	return m.Available
}

// MockHealthProber is a mock of HealthProber.
type MockHealthProber struct {
	mock.Mock
}

func (m *MockHealthProber) Probe(ctx context.Context, url string) ports.ProbeResult {
	args := m.Called(ctx, url)
	return args.Get(0).(ports.ProbeResult)
}
