package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing; searches still run.
	Degraded Status = "degraded"
	// Unhealthy indicates the index is unavailable; searches cannot run.
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

// IndexInfo summarizes the ANN build.
type IndexInfo struct {
	Dimensions int
	Indexed    int
	Skipped    int
	Trees      int
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Index  *IndexInfo
}

// Service coordinates health checks.
type Service struct {
	index     IndexReporter
	cache     CachePinger
	embedding EmbeddingChecker
}

// New creates a Service. cache and embedding can be nil.
func New(index IndexReporter, cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{index: index, cache: cache, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	var info *IndexInfo
	if s.index == nil || s.index.Stats().Indexed == 0 {
		checks["index"] = CheckError
		status = Unhealthy
	} else {
		st := s.index.Stats()
		info = &IndexInfo{Dimensions: st.Dimensions, Indexed: st.Indexed, Skipped: st.Skipped, Trees: st.Trees}
		checks["index"] = CheckOK
	}

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}

	if status == Healthy {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks, Index: info}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
