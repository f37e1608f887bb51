package workflow

import "time"

// SetClock pins the timestamps a Service's simulator stamps on each step.
func (s *Service) SetClock(now func() time.Time) {
	s.simulator = NewSimulator(s.catalog, now)
}

const ErrParseWorkflow = errParseWorkflow
