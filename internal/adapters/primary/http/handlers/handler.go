package handlers

import (
	"dashboard-packaging-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	buildSvc  *services.BuildService
	launchSvc *services.LaunchService
}

func New(
	buildSvc *services.BuildService,
	launchSvc *services.LaunchService,
) *Handler {
	return &Handler{
		buildSvc:  buildSvc,
		launchSvc: launchSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Image Builds
	r.GET("/builds", h.ListBuilds)
	r.GET("/build", h.GetBuildByParams)
	r.GET("/builds/:id", h.GetBuild)
	r.GET("/builds/:id/dockerfile", h.GetBuildDockerfile)
	r.POST("/builds", h.CreateBuild)
	r.DELETE("/builds/:id", h.DeleteBuild)

	// Deployments
	r.GET("/deployments", h.ListDeployments)
	r.GET("/deployment", h.GetDeploymentByParams)
	r.GET("/deployments/:id", h.GetDeployment)
	r.POST("/deployments", h.CreateDeployment)
	r.POST("/deployments/:id/sync", h.SyncDeployment)
	r.DELETE("/deployments/:id", h.StopDeployment)
}
