package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// BuildStatus represents the lifecycle state of an image build
type BuildStatus string

const (
	BuildStatusPending   BuildStatus = "PENDING"
	BuildStatusBuilding  BuildStatus = "BUILDING"
	BuildStatusSucceeded BuildStatus = "SUCCEEDED"
	BuildStatusFailed    BuildStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s BuildStatus) IsValid() bool {
	switch s {
	case BuildStatusPending, BuildStatusBuilding, BuildStatusSucceeded, BuildStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the build has finished, successfully or not.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSucceeded || s == BuildStatusFailed
}

// ============================================================================
// Entities
// ============================================================================

// ImageBuild represents one packaging run: a recipe applied to a build
// context, producing an immutable image. Tag and image ID are only ever
// recorded on success; a failed build publishes nothing.
type ImageBuild struct {
	ID         uuid.UUID         `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	ProjectID  uuid.UUID         `json:"project_id"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	ContextDir string            `json:"context_dir"`
	Recipe     Recipe            `json:"recipe"`
	Status     BuildStatus       `json:"status"`
	ImageTag   string            `json:"image_tag,omitempty"`
	ImageID    string            `json:"image_id,omitempty"`
	LastError  string            `json:"last_error,omitempty"`
	Labels     map[string]string `json:"labels"`
}

// NewImageBuild creates a new ImageBuild with validation
func NewImageBuild(projectID uuid.UUID, name, contextDir string, recipe Recipe) (*ImageBuild, error) {
	if name == "" {
		return nil, ErrInvalidBuildName
	}
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &ImageBuild{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		ProjectID:  projectID,
		Name:       name,
		Slug:       Slugify(name),
		ContextDir: contextDir,
		Recipe:     recipe,
		Status:     BuildStatusPending,
		Labels:     make(map[string]string),
	}, nil
}

// MarkBuilding transitions the build to BUILDING
func (b *ImageBuild) MarkBuilding() {
	b.Status = BuildStatusBuilding
	b.LastError = ""
	b.UpdatedAt = time.Now()
}

// MarkSucceeded records the published tag and image ID
func (b *ImageBuild) MarkSucceeded(tag, imageID string) {
	b.Status = BuildStatusSucceeded
	b.ImageTag = tag
	b.ImageID = imageID
	b.LastError = ""
	b.UpdatedAt = time.Now()
}

// MarkFailed records the failure; no tag or image ID is published
func (b *ImageBuild) MarkFailed(msg string) {
	b.Status = BuildStatusFailed
	b.ImageTag = ""
	b.ImageID = ""
	b.LastError = msg
	b.UpdatedAt = time.Now()
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a name into a lowercase token safe for image tags and
// container names.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
