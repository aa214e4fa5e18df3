package ports

import "context"

// ProbeResult is the outcome of one liveness probe. The contract is the
// orchestrator one: any 2xx response is healthy, anything else — including
// a connection failure — is not.
type ProbeResult struct {
	Healthy    bool
	StatusCode int
	Error      string
}

// HealthProber defines the contract for probing a launched dashboard
type HealthProber interface {
	// Probe issues one HTTP GET against the deployment health URL
	Probe(ctx context.Context, url string) ProbeResult
}
