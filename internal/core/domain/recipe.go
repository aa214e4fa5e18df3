package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Recipe defaults match the dashboard runtime contract: one Streamlit-style
// process bound to all interfaces on a fixed port, probed on its health path.
const (
	DefaultBaseImage   = "python:3.11-slim"
	DefaultWorkDir     = "/app"
	DefaultPort        = 8501
	DefaultBindAddress = "0.0.0.0"
	DefaultHealthPath  = "/_stcore/health"
)

// Probe policy baked into the generated HEALTHCHECK instruction.
const (
	healthcheckInterval = "30s"
	healthcheckTimeout  = "5s"
	healthcheckRetries  = 3
)

// Recipe describes how a dashboard application is packaged into an image:
// a base runtime, a set of files copied verbatim into the image (dependency
// manifest, entrypoint script, model artifacts), one exposed port, a health
// probe path and the foreground launch command derived from them.
//
// All file paths are relative to the build context directory.
type Recipe struct {
	BaseImage      string   `json:"base_image"`
	WorkDir        string   `json:"work_dir"`
	ManifestPath   string   `json:"manifest_path,omitempty"`
	EntrypointPath string   `json:"entrypoint_path"`
	ArtifactPaths  []string `json:"artifact_paths,omitempty"`
	Port           int      `json:"port"`
	BindAddress    string   `json:"bind_address"`
	HealthPath     string   `json:"health_path"`
}

// NewRecipe creates a Recipe with defaults applied and validation performed.
// An empty manifest path means the image carries the base runtime only.
func NewRecipe(baseImage, manifestPath, entrypointPath string, artifactPaths []string, port int, bindAddress, healthPath string) (*Recipe, error) {
	if baseImage == "" {
		baseImage = DefaultBaseImage
	}
	if port == 0 {
		port = DefaultPort
	}
	if bindAddress == "" {
		bindAddress = DefaultBindAddress
	}
	if healthPath == "" {
		healthPath = DefaultHealthPath
	}

	r := &Recipe{
		BaseImage:      baseImage,
		WorkDir:        DefaultWorkDir,
		ManifestPath:   manifestPath,
		EntrypointPath: entrypointPath,
		ArtifactPaths:  artifactPaths,
		Port:           port,
		BindAddress:    bindAddress,
		HealthPath:     healthPath,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the recipe invariants.
func (r *Recipe) Validate() error {
	if r.BaseImage == "" {
		return ErrInvalidBaseImage
	}
	if r.EntrypointPath == "" {
		return ErrInvalidEntrypoint
	}
	if r.Port < 1 || r.Port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// CopyPaths returns every file copied into the image, in copy order:
// manifest first, then the entrypoint, then the artifacts. Dependency
// installation only happens after all of them are in place, so a missing
// file fails the build before any package is resolved.
func (r *Recipe) CopyPaths() []string {
	paths := make([]string, 0, len(r.ArtifactPaths)+2)
	if r.ManifestPath != "" {
		paths = append(paths, r.ManifestPath)
	}
	paths = append(paths, r.EntrypointPath)
	paths = append(paths, r.ArtifactPaths...)
	return paths
}

// Command returns the foreground launch command in exec form. Port and bind
// address are rendered into the image and are not runtime-overridable.
func (r *Recipe) Command() []string {
	return []string{
		"streamlit", "run", r.EntrypointPath,
		fmt.Sprintf("--server.port=%d", r.Port),
		fmt.Sprintf("--server.address=%s", r.BindAddress),
	}
}

const dockerfileTemplate = `FROM {{.BaseImage}}

WORKDIR {{.WorkDir}}

{{range .CopyLines}}{{.}}
{{end}}{{if .InstallLine}}{{.InstallLine}}

{{end}}EXPOSE {{.Port}}

HEALTHCHECK --interval={{.Interval}} --timeout={{.Timeout}} --retries={{.Retries}} \
  CMD python -c "import urllib.request; urllib.request.urlopen('http://localhost:{{.Port}}{{.HealthPath}}')"

CMD {{.Command}}
`

var dockerfileTmpl = template.Must(template.New("dockerfile").Parse(dockerfileTemplate))

type dockerfileView struct {
	BaseImage   string
	WorkDir     string
	CopyLines   []string
	InstallLine string
	Port        int
	HealthPath  string
	Interval    string
	Timeout     string
	Retries     int
	Command     string
}

// Render produces the Dockerfile for this recipe. Rendering is a pure
// function of the recipe: identical recipes render identical output.
//
// Instruction order is fixed: base image, workdir, file copies, dependency
// install, EXPOSE, HEALTHCHECK, CMD. Copies preserve the relative path of
// each file under the workdir, so the install line and the launch command
// reference the same paths the build context had. The install step uses
// --no-cache-dir so no package cache is retained in the layer, and it is
// omitted entirely when the recipe has no dependency manifest. The
// HEALTHCHECK probes through the python runtime the base image ships;
// it needs no tooling the image does not already carry.
func (r *Recipe) Render() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	view := dockerfileView{
		BaseImage:  r.BaseImage,
		WorkDir:    r.WorkDir,
		Port:       r.Port,
		HealthPath: r.HealthPath,
		Interval:   healthcheckInterval,
		Timeout:    healthcheckTimeout,
		Retries:    healthcheckRetries,
	}

	for _, p := range r.CopyPaths() {
		view.CopyLines = append(view.CopyLines, fmt.Sprintf("COPY %s ./%s", p, p))
	}

	if r.ManifestPath != "" {
		view.InstallLine = fmt.Sprintf("RUN pip install --no-cache-dir -r %s", r.ManifestPath)
	}

	cmd, err := json.Marshal(r.Command())
	if err != nil {
		return "", fmt.Errorf("marshal launch command: %w", err)
	}
	view.Command = string(cmd)

	var sb strings.Builder
	if err := dockerfileTmpl.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("render dockerfile: %w", err)
	}
	return sb.String(), nil
}
