package dto

import (
	"time"

	"github.com/google/uuid"

	"dashboard-packaging-service/internal/core/domain"
)

// ============================================================================
// Image Build DTOs
// ============================================================================

type CreateBuildRequest struct {
	Name           string            `json:"name" binding:"required,max=100"`
	ContextDir     string            `json:"context_dir" binding:"required"`
	BaseImage      string            `json:"base_image"`
	ManifestPath   string            `json:"manifest_path"`
	EntrypointPath string            `json:"entrypoint_path" binding:"required"`
	ArtifactPaths  []string          `json:"artifact_paths"`
	Port           int               `json:"port"`
	BindAddress    string            `json:"bind_address"`
	HealthPath     string            `json:"health_path"`
	Labels         map[string]string `json:"labels"`
}

type ImageBuildResponse struct {
	ID         uuid.UUID         `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	ContextDir string            `json:"context_dir"`
	Recipe     domain.Recipe     `json:"recipe"`
	Status     string            `json:"status"`
	ImageTag   string            `json:"image_tag,omitempty"`
	ImageID    string            `json:"image_id,omitempty"`
	LastError  string            `json:"last_error,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
}

type ListImageBuildsResponse struct {
	Items      []ImageBuildResponse `json:"items"`
	Total      int                  `json:"total"`
	PageSize   int                  `json:"page_size"`
	NextOffset int                  `json:"next_offset"`
}

type DockerfileResponse struct {
	Dockerfile string `json:"dockerfile"`
}

func ToImageBuildResponse(b *domain.ImageBuild) ImageBuildResponse {
	return ImageBuildResponse{
		ID:         b.ID,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		Name:       b.Name,
		Slug:       b.Slug,
		ContextDir: b.ContextDir,
		Recipe:     b.Recipe,
		Status:     string(b.Status),
		ImageTag:   b.ImageTag,
		ImageID:    b.ImageID,
		LastError:  b.LastError,
		Labels:     b.Labels,
	}
}

func ToImageBuildListResponse(builds []*domain.ImageBuild, total, pageSize, offset int) ListImageBuildsResponse {
	items := make([]ImageBuildResponse, 0, len(builds))
	for _, b := range builds {
		items = append(items, ToImageBuildResponse(b))
	}
	return ListImageBuildsResponse{
		Items:      items,
		Total:      total,
		PageSize:   pageSize,
		NextOffset: offset + len(items),
	}
}
