package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	ports "dashboard-packaging-service/internal/core/ports/output"
)

// Prober issues liveness probes against launched dashboards. Contract: a
// 2xx response is healthy, anything else — including a connection failure —
// is unhealthy. Retries are the orchestrator's business, not ours; one GET
// per probe.
type Prober struct {
	client *resty.Client
}

// NewProber creates a new Prober
func NewProber(timeout time.Duration) *Prober {
	return &Prober{
		client: resty.New().SetTimeout(timeout),
	}
}

func (p *Prober) Probe(ctx context.Context, url string) ports.ProbeResult {
	resp, err := p.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return ports.ProbeResult{
			Healthy: false,
			Error:   err.Error(),
		}
	}

	code := resp.StatusCode()
	result := ports.ProbeResult{
		Healthy:    code >= 200 && code < 300,
		StatusCode: code,
	}
	if !result.Healthy {
		result.Error = fmt.Sprintf("health endpoint returned %d", code)
	}
	return result
}

// Ensure interface compliance
var _ ports.HealthProber = (*Prober)(nil)
