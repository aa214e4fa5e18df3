package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
	"dashboard-packaging-service/internal/testutil"
)

func testRecipe(t *testing.T) domain.Recipe {
	t.Helper()
	r, err := domain.NewRecipe("", "requirements.txt", "app.py", []string{"modelo_taxi_fare.pkl"}, 0, "", "")
	require.NoError(t, err)
	return *r
}

func buildServiceFixture(t *testing.T) (*BuildService, *testutil.MockImageBuildRepo, *testutil.MockDeploymentRepo, *testutil.MockImageBuilder, afero.Fs) {
	t.Helper()
	buildRepo := new(testutil.MockImageBuildRepo)
	deployRepo := new(testutil.MockDeploymentRepo)
	builder := new(testutil.MockImageBuilder)
	fs := afero.NewMemMapFs()
	svc := NewBuildService(buildRepo, deployRepo, builder, fs, "/contexts", "dashboards", time.Minute)
	return svc, buildRepo, deployRepo, builder, fs
}

func seedContext(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, "/contexts/taxi/"+f, []byte("x"), 0o644))
	}
}

func TestBuildService_Create(t *testing.T) {
	svc, buildRepo, _, builder, fs := buildServiceFixture(t)
	seedContext(t, fs, "requirements.txt", "app.py", "modelo_taxi_fare.pkl")

	buildRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ImageBuild")).Return(nil)
	// Background build may or may not have started by the time the test ends
	buildRepo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	builder.On("Build", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&ports.ImageRef{ID: "sha256:abc", Tag: "dashboards/taxi:1"}, nil).Maybe()

	build, err := svc.Create(context.Background(), CreateBuildRequest{
		ProjectID:  uuid.New(),
		Name:       "Taxi Dashboard",
		ContextDir: "taxi",
		Recipe:     testRecipe(t),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BuildStatusPending, build.Status)
	assert.Equal(t, "taxi-dashboard", build.Slug)
	assert.Equal(t, "/contexts/taxi", build.ContextDir)
	assert.Empty(t, build.ImageTag)
	buildRepo.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*domain.ImageBuild"))
}

func TestBuildService_Create_MissingArtifact(t *testing.T) {
	svc, buildRepo, _, builder, fs := buildServiceFixture(t)
	seedContext(t, fs, "requirements.txt", "app.py") // no model artifact

	_, err := svc.Create(context.Background(), CreateBuildRequest{
		ProjectID:  uuid.New(),
		Name:       "taxi",
		ContextDir: "taxi",
		Recipe:     testRecipe(t),
	})
	assert.ErrorIs(t, err, domain.ErrArtifactFileMissing)
	// The build aborts before anything is persisted or built
	buildRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	builder.AssertNotCalled(t, "Build", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildService_Create_MissingManifest(t *testing.T) {
	svc, _, _, _, fs := buildServiceFixture(t)
	seedContext(t, fs, "app.py", "modelo_taxi_fare.pkl")

	_, err := svc.Create(context.Background(), CreateBuildRequest{
		ProjectID:  uuid.New(),
		Name:       "taxi",
		ContextDir: "taxi",
		Recipe:     testRecipe(t),
	})
	assert.ErrorIs(t, err, domain.ErrManifestFileMissing)
}

func TestBuildService_Create_ContextEscape(t *testing.T) {
	svc, _, _, _, _ := buildServiceFixture(t)

	for _, dir := range []string{"", "/abs/path", "../outside", "a/../../b"} {
		_, err := svc.Create(context.Background(), CreateBuildRequest{
			ProjectID:  uuid.New(),
			Name:       "taxi",
			ContextDir: dir,
			Recipe:     testRecipe(t),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidContextDir, "dir %q", dir)
	}
}

func TestBuildService_Execute_Success(t *testing.T) {
	svc, buildRepo, _, builder, _ := buildServiceFixture(t)

	build, err := domain.NewImageBuild(uuid.New(), "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)

	buildRepo.On("Update", mock.Anything, build.ProjectID, build).Return(nil)
	builder.On("Build", mock.Anything, "/contexts/taxi", mock.AnythingOfType("string"), "dashboards/taxi:"+build.ID.String()[:8]).
		Return(&ports.ImageRef{ID: "sha256:abc", Tag: "dashboards/taxi:" + build.ID.String()[:8]}, nil)

	svc.execute(context.Background(), build)

	assert.Equal(t, domain.BuildStatusSucceeded, build.Status)
	assert.Equal(t, "sha256:abc", build.ImageID)
	assert.NotEmpty(t, build.ImageTag)
	builder.AssertExpectations(t)
}

func TestBuildService_Execute_BuilderError(t *testing.T) {
	svc, buildRepo, _, builder, _ := buildServiceFixture(t)

	build, err := domain.NewImageBuild(uuid.New(), "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)

	buildRepo.On("Update", mock.Anything, build.ProjectID, build).Return(nil)
	builder.On("Build", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("could not resolve base image"))

	svc.execute(context.Background(), build)

	// no partial state: a failed build publishes neither tag nor image ID
	assert.Equal(t, domain.BuildStatusFailed, build.Status)
	assert.Empty(t, build.ImageTag)
	assert.Empty(t, build.ImageID)
	assert.Contains(t, build.LastError, "could not resolve base image")
}

func TestBuildService_Dockerfile(t *testing.T) {
	svc, buildRepo, _, _, _ := buildServiceFixture(t)

	projectID := uuid.New()
	build, err := domain.NewImageBuild(projectID, "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)

	dockerfile, err := svc.Dockerfile(context.Background(), projectID, build.ID)
	require.NoError(t, err)
	assert.Contains(t, dockerfile, "FROM python:3.11-slim")
	assert.Contains(t, dockerfile, "EXPOSE 8501")
}

func TestBuildService_Delete_InProgress(t *testing.T) {
	svc, buildRepo, _, _, _ := buildServiceFixture(t)

	projectID := uuid.New()
	build, err := domain.NewImageBuild(projectID, "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)
	build.MarkBuilding()
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)

	err = svc.Delete(context.Background(), projectID, build.ID)
	assert.ErrorIs(t, err, domain.ErrBuildInProgress)
}

func TestBuildService_Delete_HasDeployments(t *testing.T) {
	svc, buildRepo, deployRepo, _, _ := buildServiceFixture(t)

	projectID := uuid.New()
	build, err := domain.NewImageBuild(projectID, "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)
	build.MarkSucceeded("dashboards/taxi:1", "sha256:abc")
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)
	deployRepo.On("CountByBuild", mock.Anything, projectID, build.ID).Return(2, nil)

	err = svc.Delete(context.Background(), projectID, build.ID)
	assert.ErrorIs(t, err, domain.ErrBuildHasDeployments)
}

func TestBuildService_Delete(t *testing.T) {
	svc, buildRepo, deployRepo, _, _ := buildServiceFixture(t)

	projectID := uuid.New()
	build, err := domain.NewImageBuild(projectID, "taxi", "/contexts/taxi", testRecipe(t))
	require.NoError(t, err)
	build.MarkFailed("boom")
	buildRepo.On("GetByID", mock.Anything, projectID, build.ID).Return(build, nil)
	deployRepo.On("CountByBuild", mock.Anything, projectID, build.ID).Return(0, nil)
	buildRepo.On("Delete", mock.Anything, projectID, build.ID).Return(nil)

	err = svc.Delete(context.Background(), projectID, build.ID)
	assert.NoError(t, err)
	buildRepo.AssertExpectations(t)
}
