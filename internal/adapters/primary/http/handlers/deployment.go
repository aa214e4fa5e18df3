package handlers

import (
	"net/http"
	"strconv"

	"dashboard-packaging-service/internal/adapters/primary/http/dto"
	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
	"dashboard-packaging-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListDeployments(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.DeploymentFilter{
		ProjectID:    projectID,
		Target:       c.Query("target"),
		CurrentState: c.Query("state"),
		SortBy:       c.Query("sort_by"),
		Order:        c.Query("order"),
		Limit:        limit,
		Offset:       offset,
	}
	if raw := c.Query("image_build_id"); raw != "" {
		buildID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
			return
		}
		filter.ImageBuildID = &buildID
	}

	deps, total, err := h.launchSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list deployments failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeploymentListResponse(deps, total, limit, offset))
}

func (h *Handler) GetDeployment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDeploymentID.Error()})
		return
	}

	dep, err := h.launchSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeploymentResponse(dep))
}

// GetDeploymentByParams looks up a deployment by its container ID or
// Kubernetes resource UID.
func (h *Handler) GetDeploymentByParams(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	dep, err := h.launchSvc.GetByExternalID(c.Request.Context(), projectID, c.Query("external_id"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeploymentResponse(dep))
}

func (h *Handler) CreateDeployment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.CreateDeploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.launchSvc.Launch(c.Request.Context(), services.LaunchRequest{
		ProjectID:    projectID,
		ImageBuildID: req.ImageBuildID,
		Name:         req.Name,
		Target:       domain.DeploymentTarget(req.Target),
		Namespace:    req.Namespace,
		Labels:       req.Labels,
	})
	if err != nil {
		log.WithError(err).Error("launch deployment failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.LaunchResponse{
		Deployment: dto.ToDeploymentResponse(result.Deployment),
		Status:     result.Status,
		Message:    result.Message,
	})
}

func (h *Handler) StopDeployment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDeploymentID.Error()})
		return
	}

	if err := h.launchSvc.Stop(c.Request.Context(), projectID, id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SyncDeployment polls the backing runtime and refreshes the stored state
// and health of the deployment.
func (h *Handler) SyncDeployment(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDeploymentID.Error()})
		return
	}

	dep, err := h.launchSvc.SyncStatus(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDeploymentResponse(dep))
}
