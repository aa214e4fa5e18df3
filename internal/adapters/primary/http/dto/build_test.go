package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-packaging-service/internal/core/domain"
)

func sampleBuild(t *testing.T) *domain.ImageBuild {
	t.Helper()
	recipe, err := domain.NewRecipe("", "requirements.txt", "app.py",
		[]string{"modelo_taxi_fare.pkl"}, 0, "", "")
	require.NoError(t, err)
	build, err := domain.NewImageBuild(uuid.New(), "taxi dashboard", "/contexts/taxi", *recipe)
	require.NoError(t, err)
	return build
}

func TestToImageBuildResponse(t *testing.T) {
	build := sampleBuild(t)
	build.MarkSucceeded("dashboards/taxi-dashboard:abcd1234", "sha256:deadbeef")

	resp := ToImageBuildResponse(build)

	assert.Equal(t, build.ID, resp.ID)
	assert.Equal(t, "taxi-dashboard", resp.Slug)
	assert.Equal(t, "SUCCEEDED", resp.Status)
	assert.Equal(t, "dashboards/taxi-dashboard:abcd1234", resp.ImageTag)
	assert.Equal(t, 8501, resp.Recipe.Port)
}

func TestToImageBuildListResponse_Pagination(t *testing.T) {
	builds := []*domain.ImageBuild{sampleBuild(t), sampleBuild(t)}

	resp := ToImageBuildListResponse(builds, 12, 2, 4)

	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, 2, resp.PageSize)
	assert.Equal(t, 6, resp.NextOffset)
}

func TestToDeploymentListResponse_Empty(t *testing.T) {
	resp := ToDeploymentListResponse(nil, 0, 20, 0)

	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.NextOffset)
}
