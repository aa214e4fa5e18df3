package domain

import "errors"

// ============================================================================
// Image Build Errors
// ============================================================================

var (
	ErrBuildNotFound     = errors.New("image build not found")
	ErrBuildNameConflict = errors.New("build with this name already exists in the project")
	ErrInvalidBuildName  = errors.New("build name is required")
	ErrMissingProjectID  = errors.New("project ID is required (Project-ID header)")
	ErrInvalidBuildID    = errors.New("image build ID is required")
)

// Recipe validation errors
var (
	ErrInvalidBaseImage  = errors.New("base image reference is required")
	ErrInvalidEntrypoint = errors.New("entrypoint script path is required")
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
	ErrInvalidContextDir = errors.New("context directory must be a relative path inside the build root")
)

// Build input errors (detected before any image layer is produced)
var (
	ErrManifestFileMissing   = errors.New("dependency manifest file not found in build context")
	ErrEntrypointFileMissing = errors.New("entrypoint script not found in build context")
	ErrArtifactFileMissing   = errors.New("model artifact not found in build context")
)

// Business rule errors
var (
	ErrBuildInProgress     = errors.New("image build is still in progress")
	ErrBuildNotSucceeded   = errors.New("image build has not succeeded")
	ErrBuildHasDeployments = errors.New("image build has active deployments")
)

// ============================================================================
// Deployment Errors
// ============================================================================

var (
	ErrDeploymentNotFound     = errors.New("deployment not found")
	ErrDeploymentNameConflict = errors.New("deployment with this name already exists")
	ErrInvalidDeploymentName  = errors.New("deployment name is required")
	ErrInvalidDeploymentID    = errors.New("deployment ID is required")
	ErrInvalidTarget          = errors.New("deployment target must be docker or kubernetes")
	ErrDeploymentNotRunning   = errors.New("deployment is not running")
)

// Integration errors
var (
	ErrRuntimeNotAvailable    = errors.New("container runtime is not available")
	ErrKubernetesNotAvailable = errors.New("kubernetes integration is not available")
)
