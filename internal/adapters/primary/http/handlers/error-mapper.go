package handlers

import (
	"errors"
	"net/http"

	"dashboard-packaging-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrBuildNotFound),
		errors.Is(err, domain.ErrDeploymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrBuildNameConflict),
		errors.Is(err, domain.ErrDeploymentNameConflict),
		errors.Is(err, domain.ErrBuildInProgress),
		errors.Is(err, domain.ErrBuildHasDeployments):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidBuildName),
		errors.Is(err, domain.ErrMissingProjectID),
		errors.Is(err, domain.ErrInvalidBuildID),
		errors.Is(err, domain.ErrInvalidBaseImage),
		errors.Is(err, domain.ErrInvalidEntrypoint),
		errors.Is(err, domain.ErrInvalidPort),
		errors.Is(err, domain.ErrInvalidContextDir),
		errors.Is(err, domain.ErrManifestFileMissing),
		errors.Is(err, domain.ErrEntrypointFileMissing),
		errors.Is(err, domain.ErrArtifactFileMissing),
		errors.Is(err, domain.ErrBuildNotSucceeded),
		errors.Is(err, domain.ErrInvalidDeploymentName),
		errors.Is(err, domain.ErrInvalidDeploymentID),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrDeploymentNotRunning):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrRuntimeNotAvailable),
		errors.Is(err, domain.ErrKubernetesNotAvailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
