package pkgdex

import (
	"context"

	healthuc "github.com/kailas-cloud/pkgdex/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
	// IndexDocuments is the full-text document count, -1 if the index is down.
	IndexDocuments int
}

// Health checks every backing service and the full-text index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks)+1)
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	idx := c.health.CheckIndex(ctx)
	docs := idx.Documents
	checks["index"] = string(healthuc.CheckOK)
	status := string(report.Status)
	if idx.Status != healthuc.Healthy {
		docs = -1
		checks["index"] = string(healthuc.CheckError)
		status = string(healthuc.Degraded)
	}

	return HealthStatus{Status: status, Checks: checks, IndexDocuments: docs}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
	CheckIndex(ctx context.Context) healthuc.IndexReport
}
