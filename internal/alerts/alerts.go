// Package alerts counts baseline breaches across a run and renders the
// end-of-run health summary. Strict-mode exit on breaches is the caller's
// decision.
package alerts

import "fmt"

// Stats accumulates breach counters over a run
type Stats struct {
	DriftBreaches int
	ResBreaches   int
	Total         int
	MaxDrift      float64
	MinRes        float64
}

// Update folds one turn's final signals into the counters
func (s *Stats) Update(drift, res, baseDrift, baseRes float64) {
	s.Total++
	if drift > baseDrift {
		s.DriftBreaches++
	}
	if res < baseRes {
		s.ResBreaches++
	}
	if drift > s.MaxDrift {
		s.MaxDrift = drift
	}
	if s.MinRes == 0 || res < s.MinRes {
		s.MinRes = res
	}
}

// Breached reports whether any baseline was crossed during the run
func (s *Stats) Breached() bool {
	return s.DriftBreaches > 0 || s.ResBreaches > 0
}

// SummaryLines renders the health report
func (s *Stats) SummaryLines(baseDrift, baseRes float64) []string {
	status := "OK"
	if s.Breached() {
		status = "ATTENTION"
	}
	return []string{
		fmt.Sprintf("[health] baseline_drift>%.2f, baseline_res<%.2f", baseDrift, baseRes),
		fmt.Sprintf("[health] breaches: drift=%d, res=%d, total=%d", s.DriftBreaches, s.ResBreaches, s.Total),
		fmt.Sprintf("[health] worst: drift_max=%.2f, res_min=%.2f", s.MaxDrift, s.MinRes),
		fmt.Sprintf("[health] status: %s", status),
	}
}
