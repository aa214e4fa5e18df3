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

func (h *Handler) ListBuilds(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.ImageBuildFilter{
		ProjectID: projectID,
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
		Limit:     limit,
		Offset:    offset,
	}

	builds, total, err := h.buildSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list image builds failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToImageBuildListResponse(builds, total, limit, offset))
}

func (h *Handler) GetBuild(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
		return
	}

	build, err := h.buildSvc.Get(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToImageBuildResponse(build))
}

// GetBuildByParams looks up a build by its name within the project.
func (h *Handler) GetBuildByParams(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	build, err := h.buildSvc.GetByName(c.Request.Context(), projectID, c.Query("name"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToImageBuildResponse(build))
}

// GetBuildDockerfile returns the Dockerfile rendered from the build's
// recipe. The same render feeds the actual image build, so this is what the
// daemon saw, not an approximation.
func (h *Handler) GetBuildDockerfile(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
		return
	}

	dockerfile, err := h.buildSvc.Dockerfile(c.Request.Context(), projectID, id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DockerfileResponse{Dockerfile: dockerfile})
}

func (h *Handler) CreateBuild(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	var req dto.CreateBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := domain.NewRecipe(
		req.BaseImage,
		req.ManifestPath,
		req.EntrypointPath,
		req.ArtifactPaths,
		req.Port,
		req.BindAddress,
		req.HealthPath,
	)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	build, err := h.buildSvc.Create(c.Request.Context(), services.CreateBuildRequest{
		ProjectID:  projectID,
		Name:       req.Name,
		ContextDir: req.ContextDir,
		Recipe:     *recipe,
		Labels:     req.Labels,
	})
	if err != nil {
		log.WithError(err).Error("create image build failed")
		mapDomainError(c, err)
		return
	}

	// The build runs in the background; the caller polls GET /builds/:id
	c.JSON(http.StatusAccepted, dto.ToImageBuildResponse(build))
}

func (h *Handler) DeleteBuild(c *gin.Context) {
	projectID, err := getProjectID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingProjectID.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidBuildID.Error()})
		return
	}

	if err := h.buildSvc.Delete(c.Request.Context(), projectID, id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func getProjectID(c *gin.Context) (uuid.UUID, error) {
	header := c.GetHeader("Project-ID")
	if header == "" {
		return uuid.Nil, domain.ErrMissingProjectID
	}
	return uuid.Parse(header)
}
