package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
)

// LaunchService launches successfully built images: as a supervised docker
// container or as a Kubernetes Deployment. Exactly one process per
// deployment; process exit terminates the container.
type LaunchService struct {
	deployRepo ports.DeploymentRepository
	buildRepo  ports.ImageBuildRepository
	runtime    ports.ContainerRuntime
	kube       ports.KubeClient
	probeHost  string
}

func NewLaunchService(
	deployRepo ports.DeploymentRepository,
	buildRepo ports.ImageBuildRepository,
	runtime ports.ContainerRuntime,
	kube ports.KubeClient,
	probeHost string,
) *LaunchService {
	return &LaunchService{
		deployRepo: deployRepo,
		buildRepo:  buildRepo,
		runtime:    runtime,
		kube:       kube,
		probeHost:  probeHost,
	}
}

type LaunchRequest struct {
	ProjectID    uuid.UUID
	ImageBuildID uuid.UUID
	Name         string
	Target       domain.DeploymentTarget
	Namespace    string
	Labels       map[string]string
}

type LaunchResult struct {
	Deployment *domain.Deployment
	Status     string // RUNNING, PENDING, FAILED
	Message    string
}

func (s *LaunchService) Launch(ctx context.Context, req LaunchRequest) (*LaunchResult, error) {
	// 1. The image must exist and be fully built
	build, err := s.buildRepo.GetByID(ctx, req.ProjectID, req.ImageBuildID)
	if err != nil {
		return nil, fmt.Errorf("get image build: %w", err)
	}
	if build.Status != domain.BuildStatusSucceeded {
		return nil, domain.ErrBuildNotSucceeded
	}

	// 2. Default the target and check the backing integration up front
	target := req.Target
	if target == "" {
		target = domain.TargetDocker
	}
	switch target {
	case domain.TargetDocker:
		if s.runtime == nil || !s.runtime.IsAvailable() {
			return nil, domain.ErrRuntimeNotAvailable
		}
	case domain.TargetKubernetes:
		if s.kube == nil || !s.kube.IsAvailable() {
			return nil, domain.ErrKubernetesNotAvailable
		}
	default:
		return nil, domain.ErrInvalidTarget
	}

	// 3. Generate name if not provided
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s-%s", build.Slug, uuid.New().String()[:8])
	}

	// 4. Create Deployment entity
	dep, err := domain.NewDeployment(req.ProjectID, build.ID, name, target)
	if err != nil {
		return nil, err
	}
	dep.Namespace = req.Namespace
	if req.Labels != nil {
		dep.Labels = req.Labels
	}

	// 5. Save to database
	if err := s.deployRepo.Create(ctx, dep); err != nil {
		return nil, fmt.Errorf("create deployment: %w", err)
	}

	// 6. Launch on the selected target
	switch target {
	case domain.TargetDocker:
		return s.launchDocker(ctx, dep, build)
	default:
		return s.launchKubernetes(ctx, dep, build)
	}
}

func (s *LaunchService) launchDocker(ctx context.Context, dep *domain.Deployment, build *domain.ImageBuild) (*LaunchResult, error) {
	containerID, err := s.runtime.Launch(ctx, ports.LaunchSpec{
		Name:        dep.Name,
		Image:       build.ImageTag,
		Port:        build.Recipe.Port,
		BindAddress: build.Recipe.BindAddress,
		Labels:      s.containerLabels(dep, build),
	})
	if err != nil {
		dep.MarkFailed(err.Error())
		s.deployRepo.Update(ctx, dep.ProjectID, dep)
		return &LaunchResult{
			Deployment: dep,
			Status:     "FAILED",
			Message:    err.Error(),
		}, nil
	}

	url := fmt.Sprintf("http://%s:%d", s.probeHost, build.Recipe.Port)
	dep.MarkRunning(containerID, url, url+build.Recipe.HealthPath)
	s.deployRepo.Update(ctx, dep.ProjectID, dep)

	// Fetch with joined fields
	if fresh, err := s.deployRepo.GetByID(ctx, dep.ProjectID, dep.ID); err == nil {
		dep = fresh
	}

	return &LaunchResult{
		Deployment: dep,
		Status:     "RUNNING",
		Message:    "dashboard launched",
	}, nil
}

func (s *LaunchService) launchKubernetes(ctx context.Context, dep *domain.Deployment, build *domain.ImageBuild) (*LaunchResult, error) {
	result, err := s.kube.Deploy(ctx, dep.Namespace, dep, build)
	if err != nil {
		dep.MarkFailed(err.Error())
		s.deployRepo.Update(ctx, dep.ProjectID, dep)
		return &LaunchResult{
			Deployment: dep,
			Status:     "FAILED",
			Message:    err.Error(),
		}, nil
	}

	dep.MarkRunning(result.ExternalID, result.URL, "")
	s.deployRepo.Update(ctx, dep.ProjectID, dep)

	if fresh, err := s.deployRepo.GetByID(ctx, dep.ProjectID, dep.ID); err == nil {
		dep = fresh
	}

	return &LaunchResult{
		Deployment: dep,
		Status:     "PENDING",
		Message:    "deployment created, readiness pending",
	}, nil
}

// Stop stops the deployment and records it as stopped. A FAILED deployment
// may still own a container, so only an already-stopped one is rejected.
func (s *LaunchService) Stop(ctx context.Context, projectID, id uuid.UUID) error {
	dep, err := s.deployRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return err
	}
	if dep.CurrentState == domain.DeploymentStateStopped {
		return domain.ErrDeploymentNotRunning
	}

	switch dep.Target {
	case domain.TargetDocker:
		if s.runtime != nil && s.runtime.IsAvailable() && dep.ExternalID != "" {
			// Ignore errors - the container might already be gone
			_ = s.runtime.Stop(ctx, dep.ExternalID)
			_ = s.runtime.Remove(ctx, dep.ExternalID)
		}
	case domain.TargetKubernetes:
		if s.kube != nil && s.kube.IsAvailable() {
			_ = s.kube.Undeploy(ctx, dep.Namespace, dep.Name)
		}
	}

	dep.MarkStopped()
	return s.deployRepo.Update(ctx, projectID, dep)
}

// SyncStatus refreshes the deployment state from its runtime.
func (s *LaunchService) SyncStatus(ctx context.Context, projectID, id uuid.UUID) (*domain.Deployment, error) {
	dep, err := s.deployRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	switch dep.Target {
	case domain.TargetDocker:
		err = s.syncDocker(ctx, dep)
	case domain.TargetKubernetes:
		err = s.syncKubernetes(ctx, dep)
	}
	if err != nil {
		return nil, err
	}

	if err := s.deployRepo.Update(ctx, projectID, dep); err != nil {
		return nil, err
	}
	return s.deployRepo.GetByID(ctx, projectID, id)
}

func (s *LaunchService) syncDocker(ctx context.Context, dep *domain.Deployment) error {
	if s.runtime == nil || !s.runtime.IsAvailable() || dep.ExternalID == "" {
		return nil
	}

	status, err := s.runtime.Status(ctx, dep.ExternalID)
	if err != nil {
		return fmt.Errorf("inspect container: %w", err)
	}

	if !status.Running {
		// Exit codes pass through untranslated
		if status.ExitCode != 0 {
			dep.MarkFailed(fmt.Sprintf("process exited with code %d", status.ExitCode))
		} else {
			dep.MarkStopped()
		}
		return nil
	}

	switch status.Health {
	case "healthy":
		dep.MarkHealthy()
	case "unhealthy":
		dep.MarkUnhealthy("container healthcheck failing")
	}
	return nil
}

func (s *LaunchService) syncKubernetes(ctx context.Context, dep *domain.Deployment) error {
	if s.kube == nil || !s.kube.IsAvailable() {
		return nil
	}

	status, err := s.kube.GetStatus(ctx, dep.Namespace, dep.Name)
	if err != nil {
		return err
	}

	if status.Ready {
		dep.MarkHealthy()
	} else if status.Error != "" {
		dep.MarkUnhealthy(status.Error)
	}
	return nil
}

// Get retrieves a deployment by ID
func (s *LaunchService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.Deployment, error) {
	return s.deployRepo.GetByID(ctx, projectID, id)
}

// GetByExternalID retrieves a deployment by its container ID or K8s UID
func (s *LaunchService) GetByExternalID(ctx context.Context, projectID uuid.UUID, externalID string) (*domain.Deployment, error) {
	if externalID == "" {
		return nil, domain.ErrInvalidDeploymentID
	}
	return s.deployRepo.GetByExternalID(ctx, projectID, externalID)
}

// List lists deployments with filtering
func (s *LaunchService) List(ctx context.Context, filter ports.DeploymentFilter) ([]*domain.Deployment, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.deployRepo.List(ctx, filter)
}

func (s *LaunchService) containerLabels(dep *domain.Deployment, build *domain.ImageBuild) map[string]string {
	labels := map[string]string{
		"dashboard-packager/deployment-id": dep.ID.String(),
		"dashboard-packager/build-id":      build.ID.String(),
		"dashboard-packager/project-id":    dep.ProjectID.String(),
	}
	for k, v := range dep.Labels {
		labels[k] = v
	}
	return labels
}
