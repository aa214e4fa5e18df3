package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
)

// BuildService drives image builds: it validates the recipe inputs against
// the build context, records the build, and runs the image builder in the
// background. A build that fails at any point publishes no tag or image ID.
type BuildService struct {
	buildRepo    ports.ImageBuildRepository
	deployRepo   ports.DeploymentRepository
	builder      ports.ImageBuilder
	fs           afero.Fs
	contextRoot  string
	tagPrefix    string
	buildTimeout time.Duration
}

func NewBuildService(
	buildRepo ports.ImageBuildRepository,
	deployRepo ports.DeploymentRepository,
	builder ports.ImageBuilder,
	fs afero.Fs,
	contextRoot string,
	tagPrefix string,
	buildTimeout time.Duration,
) *BuildService {
	return &BuildService{
		buildRepo:    buildRepo,
		deployRepo:   deployRepo,
		builder:      builder,
		fs:           fs,
		contextRoot:  contextRoot,
		tagPrefix:    tagPrefix,
		buildTimeout: buildTimeout,
	}
}

type CreateBuildRequest struct {
	ProjectID  uuid.UUID
	Name       string
	ContextDir string // relative to the configured build context root
	Recipe     domain.Recipe
	Labels     map[string]string
}

// Create validates the request, persists a PENDING build and starts the
// image build in the background. Every file the recipe copies must already
// exist in the build context: a missing model artifact or manifest fails
// here, before any dependency is resolved or any layer is produced.
func (s *BuildService) Create(ctx context.Context, req CreateBuildRequest) (*domain.ImageBuild, error) {
	contextDir, err := s.resolveContextDir(req.ContextDir)
	if err != nil {
		return nil, err
	}

	build, err := domain.NewImageBuild(req.ProjectID, req.Name, contextDir, req.Recipe)
	if err != nil {
		return nil, err
	}
	if req.Labels != nil {
		build.Labels = req.Labels
	}

	if err := s.validateInputs(build); err != nil {
		return nil, err
	}

	if err := s.buildRepo.Create(ctx, build); err != nil {
		return nil, fmt.Errorf("create image build: %w", err)
	}

	// The runner gets its own copy; the caller keeps the PENDING snapshot.
	snapshot := *build
	go s.run(&snapshot)

	return build, nil
}

// Get retrieves an image build by ID
func (s *BuildService) Get(ctx context.Context, projectID, id uuid.UUID) (*domain.ImageBuild, error) {
	return s.buildRepo.GetByID(ctx, projectID, id)
}

// GetByName retrieves an image build by its name within the project
func (s *BuildService) GetByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.ImageBuild, error) {
	if name == "" {
		return nil, domain.ErrInvalidBuildName
	}
	return s.buildRepo.GetByName(ctx, projectID, name)
}

// List lists image builds with filtering
func (s *BuildService) List(ctx context.Context, filter ports.ImageBuildFilter) ([]*domain.ImageBuild, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.buildRepo.List(ctx, filter)
}

// Dockerfile returns the rendered packaging recipe of a build
func (s *BuildService) Dockerfile(ctx context.Context, projectID, id uuid.UUID) (string, error) {
	build, err := s.buildRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return "", err
	}
	return build.Recipe.Render()
}

// Delete removes a build record. In-progress builds and builds with
// deployments are protected.
func (s *BuildService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	build, err := s.buildRepo.GetByID(ctx, projectID, id)
	if err != nil {
		return err
	}
	if build.Status == domain.BuildStatusBuilding {
		return domain.ErrBuildInProgress
	}

	count, err := s.deployRepo.CountByBuild(ctx, projectID, id)
	if err != nil {
		return fmt.Errorf("count deployments for build: %w", err)
	}
	if count > 0 {
		return domain.ErrBuildHasDeployments
	}

	return s.buildRepo.Delete(ctx, projectID, id)
}

func (s *BuildService) resolveContextDir(dir string) (string, error) {
	if dir == "" || filepath.IsAbs(dir) {
		return "", domain.ErrInvalidContextDir
	}
	clean := filepath.Clean(dir)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", domain.ErrInvalidContextDir
	}
	return filepath.Join(s.contextRoot, clean), nil
}

// validateInputs checks every copied file in copy order, so a missing
// artifact is reported deterministically before dependency installation
// could ever run.
func (s *BuildService) validateInputs(build *domain.ImageBuild) error {
	recipe := build.Recipe

	if recipe.ManifestPath != "" {
		if err := s.requireFile(build.ContextDir, recipe.ManifestPath, domain.ErrManifestFileMissing); err != nil {
			return err
		}
	}
	if err := s.requireFile(build.ContextDir, recipe.EntrypointPath, domain.ErrEntrypointFileMissing); err != nil {
		return err
	}
	for _, p := range recipe.ArtifactPaths {
		if err := s.requireFile(build.ContextDir, p, domain.ErrArtifactFileMissing); err != nil {
			return err
		}
	}
	return nil
}

func (s *BuildService) requireFile(contextDir, rel string, sentinel error) error {
	ok, err := afero.Exists(s.fs, filepath.Join(contextDir, rel))
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", sentinel, rel)
	}
	return nil
}

func (s *BuildService) run(build *domain.ImageBuild) {
	ctx, cancel := context.WithTimeout(context.Background(), s.buildTimeout)
	defer cancel()
	s.execute(ctx, build)
}

func (s *BuildService) execute(ctx context.Context, build *domain.ImageBuild) {
	logger := log.WithFields(log.Fields{"build_id": build.ID, "name": build.Name})

	build.MarkBuilding()
	if err := s.buildRepo.Update(ctx, build.ProjectID, build); err != nil {
		logger.WithError(err).Error("persist building state failed")
	}

	dockerfile, err := build.Recipe.Render()
	if err != nil {
		s.fail(ctx, build, logger, err)
		return
	}

	tag := s.imageTag(build)
	ref, err := s.builder.Build(ctx, build.ContextDir, dockerfile, tag)
	if err != nil {
		s.fail(ctx, build, logger, err)
		return
	}

	build.MarkSucceeded(ref.Tag, ref.ID)
	if err := s.buildRepo.Update(ctx, build.ProjectID, build); err != nil {
		logger.WithError(err).Error("persist build result failed")
		return
	}
	logger.WithField("image", ref.Tag).Info("image build succeeded")
}

func (s *BuildService) fail(ctx context.Context, build *domain.ImageBuild, logger *log.Entry, cause error) {
	logger.WithError(cause).Error("image build failed")
	build.MarkFailed(cause.Error())
	if err := s.buildRepo.Update(ctx, build.ProjectID, build); err != nil {
		logger.WithError(err).Error("persist build failure failed")
	}
}

func (s *BuildService) imageTag(build *domain.ImageBuild) string {
	return fmt.Sprintf("%s/%s:%s", s.tagPrefix, build.Slug, build.ID.String()[:8])
}
