package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names.
const (
	ComponentDatabase  = "database"
	ComponentRedis     = "redis"
	ComponentEmbedding = "embedding"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// IndexReport is the health of the full-text index service.
type IndexReport struct {
	Status    Status
	Documents int
	Error     string
}

// Service coordinates health checks.
type Service struct {
	db        Pinger
	redis     Pinger
	embedding EmbeddingChecker
	index     IndexChecker
	timeout   time.Duration
}

// New creates a Service. redis, embedding and index can be nil.
func New(db, redis Pinger, embedding EmbeddingChecker, index IndexChecker) *Service {
	return &Service{db: db, redis: redis, embedding: embedding, index: index, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentDatabase] = s.run(ctx, s.db.Ping)
	if s.redis != nil {
		checks[ComponentRedis] = s.run(ctx, s.redis.Ping)
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = s.run(ctx, s.embedding.HealthCheck)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

// CheckIndex reports the health of the full-text index only.
func (s *Service) CheckIndex(ctx context.Context) IndexReport {
	if s.index == nil {
		return IndexReport{Status: Unhealthy, Error: "full-text index not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.index.Health(ctx)
	if err != nil {
		return IndexReport{Status: Unhealthy, Error: err.Error()}
	}
	return IndexReport{Status: Healthy, Documents: n}
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
