package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"dashboard-packaging-service/internal/core/domain"
	ports "dashboard-packaging-service/internal/core/ports/output"
)

// MonitorService periodically probes the health endpoint of every running
// docker deployment. Kubernetes deployments carry in-cluster probes and are
// skipped. A 2xx response is healthy; anything else, including a connection
// failure, is unhealthy.
type MonitorService struct {
	deployRepo ports.DeploymentRepository
	prober     ports.HealthProber
	interval   time.Duration
}

func NewMonitorService(deployRepo ports.DeploymentRepository, prober ports.HealthProber, interval time.Duration) *MonitorService {
	return &MonitorService{
		deployRepo: deployRepo,
		prober:     prober,
		interval:   interval,
	}
}

// Run sweeps until the context is cancelled.
func (m *MonitorService) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Infof("health monitor started (interval %s)", m.interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("health monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep probes every running docker deployment once.
func (m *MonitorService) Sweep(ctx context.Context) {
	deps, err := m.deployRepo.ListRunning(ctx)
	if err != nil {
		log.WithError(err).Error("list running deployments failed")
		return
	}

	for _, dep := range deps {
		if dep.Target != domain.TargetDocker || dep.HealthURL == "" {
			continue
		}

		result := m.prober.Probe(ctx, dep.HealthURL)
		previous := dep.Health

		if result.Healthy {
			dep.MarkHealthy()
		} else {
			dep.MarkUnhealthy(result.Error)
		}

		if dep.Health != previous {
			log.WithFields(log.Fields{
				"deployment_id": dep.ID,
				"name":          dep.Name,
				"health":        dep.Health,
				"status_code":   result.StatusCode,
			}).Info("deployment health changed")
		}

		if err := m.deployRepo.Update(ctx, dep.ProjectID, dep); err != nil {
			log.WithError(err).WithField("deployment_id", dep.ID).Error("persist health state failed")
		}
	}
}
