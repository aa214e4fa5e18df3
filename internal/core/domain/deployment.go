package domain

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// DeploymentTarget selects where a built image is launched
type DeploymentTarget string

const (
	TargetDocker     DeploymentTarget = "docker"
	TargetKubernetes DeploymentTarget = "kubernetes"
)

// IsValid checks if the target is valid
func (t DeploymentTarget) IsValid() bool {
	return t == TargetDocker || t == TargetKubernetes
}

// DeploymentState represents the state of a launched deployment
type DeploymentState string

const (
	DeploymentStateRunning DeploymentState = "RUNNING"
	DeploymentStateStopped DeploymentState = "STOPPED"
	DeploymentStateFailed  DeploymentState = "FAILED"
)

// IsValid checks if the state is valid
func (s DeploymentState) IsValid() bool {
	return s == DeploymentStateRunning || s == DeploymentStateStopped || s == DeploymentStateFailed
}

// HealthState is the last observed result of the health probe
type HealthState string

const (
	HealthUnknown   HealthState = "UNKNOWN"
	HealthHealthy   HealthState = "HEALTHY"
	HealthUnhealthy HealthState = "UNHEALTHY"
)

// ============================================================================
// Entities
// ============================================================================

// Deployment represents one launched instance of a built image: a docker
// container or a kubernetes Deployment running the packaged dashboard.
type Deployment struct {
	ID           uuid.UUID         `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	ProjectID    uuid.UUID         `json:"project_id"`
	ImageBuildID uuid.UUID         `json:"image_build_id"`
	Name         string            `json:"name"`
	Target       DeploymentTarget  `json:"target"`
	ExternalID   string            `json:"external_id"` // container ID or K8s resource UID
	Namespace    string            `json:"namespace,omitempty"`
	DesiredState DeploymentState   `json:"desired_state"`
	CurrentState DeploymentState   `json:"current_state"`
	Health       HealthState       `json:"health"`
	URL          string            `json:"url"`
	HealthURL    string            `json:"health_url"`
	LastError    string            `json:"last_error"`
	Labels       map[string]string `json:"labels"`

	// Computed/joined fields
	BuildName string `json:"build_name,omitempty"`
	ImageTag  string `json:"image_tag,omitempty"`
}

// NewDeployment creates a new Deployment with validation
func NewDeployment(projectID, buildID uuid.UUID, name string, target DeploymentTarget) (*Deployment, error) {
	if name == "" {
		return nil, ErrInvalidDeploymentName
	}
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if buildID == uuid.Nil {
		return nil, ErrInvalidBuildID
	}
	if !target.IsValid() {
		return nil, ErrInvalidTarget
	}

	now := time.Now()
	return &Deployment{
		ID:           uuid.New(),
		CreatedAt:    now,
		UpdatedAt:    now,
		ProjectID:    projectID,
		ImageBuildID: buildID,
		Name:         name,
		Target:       target,
		DesiredState: DeploymentStateRunning,
		CurrentState: DeploymentStateStopped,
		Health:       HealthUnknown,
		Labels:       make(map[string]string),
	}, nil
}

// MarkRunning records a successful launch
func (d *Deployment) MarkRunning(externalID, url, healthURL string) {
	d.CurrentState = DeploymentStateRunning
	d.ExternalID = externalID
	d.URL = url
	d.HealthURL = healthURL
	d.LastError = ""
	d.UpdatedAt = time.Now()
}

// MarkStopped records that the process is no longer running
func (d *Deployment) MarkStopped() {
	d.DesiredState = DeploymentStateStopped
	d.CurrentState = DeploymentStateStopped
	d.Health = HealthUnknown
	d.UpdatedAt = time.Now()
}

// MarkFailed records a launch or runtime failure
func (d *Deployment) MarkFailed(msg string) {
	d.CurrentState = DeploymentStateFailed
	d.LastError = msg
	d.UpdatedAt = time.Now()
}

// MarkHealthy records a successful probe
func (d *Deployment) MarkHealthy() {
	d.Health = HealthHealthy
	d.LastError = ""
	d.UpdatedAt = time.Now()
}

// MarkUnhealthy records a failed probe
func (d *Deployment) MarkUnhealthy(msg string) {
	d.Health = HealthUnhealthy
	d.LastError = msg
	d.UpdatedAt = time.Now()
}

// IsRunning reports whether the deployment is currently running
func (d *Deployment) IsRunning() bool {
	return d.CurrentState == DeploymentStateRunning
}
