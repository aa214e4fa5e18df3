package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
	"dashboard-packaging-service/internal/testutil"
)

func launchServiceFixture(t *testing.T) (*LaunchService, *testutil.MockDeploymentRepo, *testutil.MockImageBuildRepo, *testutil.MockContainerRuntime, *testutil.MockKubeClient) {
	t.Helper()
	deployRepo := new(testutil.MockDeploymentRepo)
	buildRepo := new(testutil.MockImageBuildRepo)
	runtime := &testutil.MockContainerRuntime{Available: true}
	kube := &testutil.MockKubeClient{Available: true}
	svc := NewLaunchService(deployRepo, buildRepo, runtime, kube, "localhost")
	return svc, deployRepo, buildRepo, runtime, kube
}

func succeededBuild(t *testing.T, projectID uuid.UUID) *domain.ImageBuild {
	t.Helper()
	build, err := domain.NewImageBuild(projectID, "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)
	build.MarkSucceeded("dashboards/taxi:"+build.ID.String()[:8], "sha256:abc")
	return build
}

func TestLaunchService_Launch_Docker(t *testing.T) {
	svc, deployRepo, buildRepo, runtime, _ := launchServiceFixture(t)

	projectID := uuid.New()
	build := succeededBuild(t, projectID)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)
	deployRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Deployment")).Return(nil)
	runtime.On("Launch", mock.Anything, mock.MatchedBy(func(spec ports.LaunchSpec) bool {
		return spec.Image == build.ImageTag && spec.Port == 8501 && spec.BindAddress == "0.0.0.0"
	})).Return("container-123", nil)
	deployRepo.On("Update", mock.Anything, projectID, mock.AnythingOfType("*domain.Deployment")).Return(nil)
	deployRepo.On("GetByID", mock.Anything, projectID, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.Deployment{ID: uuid.New(), Name: "taxi-x", CurrentState: domain.DeploymentStateRunning}, nil)

	result, err := svc.Launch(context.Background(), LaunchRequest{
		ProjectID:    projectID,
		ImageBuildID: build.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "RUNNING", result.Status)
	runtime.AssertExpectations(t)
}

func TestLaunchService_Launch_BuildNotSucceeded(t *testing.T) {
	svc, _, buildRepo, _, _ := launchServiceFixture(t)

	projectID := uuid.New()
	build, err := domain.NewImageBuild(projectID, "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)

	_, err = svc.Launch(context.Background(), LaunchRequest{ProjectID: projectID, ImageBuildID: build.ID})
	assert.ErrorIs(t, err, domain.ErrBuildNotSucceeded)
}

func TestLaunchService_Launch_RuntimeUnavailable(t *testing.T) {
	svc, _, buildRepo, runtime, _ := launchServiceFixture(t)
	runtime.Available = false

	projectID := uuid.New()
	build := succeededBuild(t, projectID)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)

	_, err := svc.Launch(context.Background(), LaunchRequest{ProjectID: projectID, ImageBuildID: build.ID})
	assert.ErrorIs(t, err, domain.ErrRuntimeNotAvailable)
}

func TestLaunchService_Launch_DockerFailure(t *testing.T) {
	svc, deployRepo, buildRepo, runtime, _ := launchServiceFixture(t)

	projectID := uuid.New()
	build := succeededBuild(t, projectID)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)
	deployRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Deployment")).Return(nil)
	runtime.On("Launch", mock.Anything, mock.Anything).Return("", errors.New("port is already allocated"))
	deployRepo.On("Update", mock.Anything, projectID, mock.AnythingOfType("*domain.Deployment")).Return(nil)

	result, err := svc.Launch(context.Background(), LaunchRequest{ProjectID: projectID, ImageBuildID: build.ID})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.Status)
	assert.Equal(t, domain.DeploymentStateFailed, result.Deployment.CurrentState)
	assert.Contains(t, result.Message, "port is already allocated")
}

func TestLaunchService_Launch_Kubernetes(t *testing.T) {
	svc, deployRepo, buildRepo, _, kube := launchServiceFixture(t)

	projectID := uuid.New()
	build := succeededBuild(t, projectID)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)
	deployRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Deployment")).Return(nil)
	kube.On("Deploy", mock.Anything, "analytics", mock.AnythingOfType("*domain.Deployment"), build).
		Return(&ports.KubeDeployment{ExternalID: "uid-1"}, nil)
	deployRepo.On("Update", mock.Anything, projectID, mock.AnythingOfType("*domain.Deployment")).Return(nil)
	deployRepo.On("GetByID", mock.Anything, projectID, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.Deployment{ID: uuid.New(), Name: "taxi-x"}, nil)

	result, err := svc.Launch(context.Background(), LaunchRequest{
		ProjectID:    projectID,
		ImageBuildID: build.ID,
		Target:       domain.TargetKubernetes,
		Namespace:    "analytics",
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.Status)
	kube.AssertExpectations(t)
}

func TestLaunchService_Launch_KubernetesUnavailable(t *testing.T) {
	svc, _, buildRepo, _, kube := launchServiceFixture(t)
	kube.Available = false

	projectID := uuid.New()
	build := succeededBuild(t, projectID)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)

	_, err := svc.Launch(context.Background(), LaunchRequest{
		ProjectID:    projectID,
		ImageBuildID: build.ID,
		Target:       domain.TargetKubernetes,
	})
	assert.ErrorIs(t, err, domain.ErrKubernetesNotAvailable)
}

func TestLaunchService_Stop_Docker(t *testing.T) {
	svc, deployRepo, _, runtime, _ := launchServiceFixture(t)

	projectID := uuid.New()
	dep, err := domain.NewDeployment(projectID, uuid.New(), "taxi-x", domain.TargetDocker)
	require.NoError(t, err)
	dep.MarkRunning("container-123", "http://localhost:8501", "http://localhost:8501/_stcore/health")

	deployRepo.On("GetByID", mock.Anything, projectID, dep.ID).Return(dep, nil)
	runtime.On("Stop", mock.Anything, "container-123").Return(nil)
	runtime.On("Remove", mock.Anything, "container-123").Return(nil)
	deployRepo.On("Update", mock.Anything, projectID, dep).Return(nil)

	err = svc.Stop(context.Background(), projectID, dep.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.DeploymentStateStopped, dep.CurrentState)
	runtime.AssertExpectations(t)
}

func TestLaunchService_Stop_AlreadyStopped(t *testing.T) {
	svc, deployRepo, _, runtime, _ := launchServiceFixture(t)

	projectID := uuid.New()
	dep, err := domain.NewDeployment(projectID, uuid.New(), "taxi-x", domain.TargetDocker)
	require.NoError(t, err)
	// NewDeployment starts out STOPPED; nothing was ever launched

	deployRepo.On("GetByID", mock.Anything, projectID, dep.ID).Return(dep, nil)

	err = svc.Stop(context.Background(), projectID, dep.ID)
	assert.ErrorIs(t, err, domain.ErrDeploymentNotRunning)
	runtime.AssertNotCalled(t, "Stop")
	deployRepo.AssertNotCalled(t, "Update")
}

func TestLaunchService_GetByExternalID(t *testing.T) {
	svc, deployRepo, _, _, _ := launchServiceFixture(t)

	projectID := uuid.New()
	dep, err := domain.NewDeployment(projectID, uuid.New(), "taxi-x", domain.TargetDocker)
	require.NoError(t, err)
	dep.MarkRunning("container-123", "http://localhost:8501", "http://localhost:8501/_stcore/health")

	deployRepo.On("GetByExternalID", mock.Anything, projectID, "container-123").Return(dep, nil)

	found, err := svc.GetByExternalID(context.Background(), projectID, "container-123")
	require.NoError(t, err)
	assert.Equal(t, dep.ID, found.ID)

	_, err = svc.GetByExternalID(context.Background(), projectID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidDeploymentID)
}

func TestLaunchService_SyncStatus_Healthy(t *testing.T) {
	svc, deployRepo, _, runtime, _ := launchServiceFixture(t)

	projectID := uuid.New()
	dep, err := domain.NewDeployment(projectID, uuid.New(), "taxi-x", domain.TargetDocker)
	require.NoError(t, err)
	dep.MarkRunning("container-123", "http://localhost:8501", "http://localhost:8501/_stcore/health")

	deployRepo.On("GetByID", mock.Anything, projectID, dep.ID).Return(dep, nil)
	runtime.On("Status", mock.Anything, "container-123").Return(&ports.ContainerStatus{Running: true, Health: "healthy"}, nil)
	deployRepo.On("Update", mock.Anything, projectID, dep).Return(nil)

	synced, err := svc.SyncStatus(context.Background(), projectID, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HealthHealthy, synced.Health)
}

func TestLaunchService_SyncStatus_ProcessExited(t *testing.T) {
	svc, deployRepo, _, runtime, _ := launchServiceFixture(t)

	projectID := uuid.New()
	dep, err := domain.NewDeployment(projectID, uuid.New(), "taxi-x", domain.TargetDocker)
	require.NoError(t, err)
	dep.MarkRunning("container-123", "http://localhost:8501", "http://localhost:8501/_stcore/health")

	deployRepo.On("GetByID", mock.Anything, projectID, dep.ID).Return(dep, nil)
	runtime.On("Status", mock.Anything, "container-123").Return(&ports.ContainerStatus{Running: false, ExitCode: 137}, nil)
	deployRepo.On("Update", mock.Anything, projectID, dep).Return(nil)

	synced, err := svc.SyncStatus(context.Background(), projectID, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeploymentStateFailed, synced.CurrentState)
	assert.Contains(t, synced.LastError, "137")
}
