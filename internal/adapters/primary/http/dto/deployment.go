package dto

import (
	"time"

	"github.com/google/uuid"

	"dashboard-packaging-service/internal/core/domain"
)

// ============================================================================
// Deployment DTOs
// ============================================================================

type CreateDeploymentRequest struct {
	ImageBuildID uuid.UUID         `json:"image_build_id" binding:"required"`
	Name         string            `json:"name"`
	Target       string            `json:"target"`
	Namespace    string            `json:"namespace"`
	Labels       map[string]string `json:"labels"`
}

type DeploymentResponse struct {
	ID           uuid.UUID         `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	ImageBuildID uuid.UUID         `json:"image_build_id"`
	Name         string            `json:"name"`
	Target       string            `json:"target"`
	ExternalID   string            `json:"external_id,omitempty"`
	Namespace    string            `json:"namespace,omitempty"`
	DesiredState string            `json:"desired_state"`
	CurrentState string            `json:"current_state"`
	Health       string            `json:"health"`
	URL          string            `json:"url,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	BuildName    string            `json:"build_name,omitempty"`
	ImageTag     string            `json:"image_tag,omitempty"`
}

type LaunchResponse struct {
	Deployment DeploymentResponse `json:"deployment"`
	Status     string             `json:"status"`
	Message    string             `json:"message"`
}

type ListDeploymentsResponse struct {
	Items      []DeploymentResponse `json:"items"`
	Total      int                  `json:"total"`
	PageSize   int                  `json:"page_size"`
	NextOffset int                  `json:"next_offset"`
}

func ToDeploymentResponse(d *domain.Deployment) DeploymentResponse {
	return DeploymentResponse{
		ID:           d.ID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		ImageBuildID: d.ImageBuildID,
		Name:         d.Name,
		Target:       string(d.Target),
		ExternalID:   d.ExternalID,
		Namespace:    d.Namespace,
		DesiredState: string(d.DesiredState),
		CurrentState: string(d.CurrentState),
		Health:       string(d.Health),
		URL:          d.URL,
		LastError:    d.LastError,
		Labels:       d.Labels,
		BuildName:    d.BuildName,
		ImageTag:     d.ImageTag,
	}
}

func ToDeploymentListResponse(deps []*domain.Deployment, total, pageSize, offset int) ListDeploymentsResponse {
	items := make([]DeploymentResponse, 0, len(deps))
	for _, d := range deps {
		items = append(items, ToDeploymentResponse(d))
	}
	return ListDeploymentsResponse{
		Items:      items,
		Total:      total,
		PageSize:   pageSize,
		NextOffset: offset + len(items),
	}
}
