// Package awareness is the meta-cognitive layer: the engine observing its own
// regulation. It reads the core's outputs (measured drift/resonance, the
// stabilizer state, the magnitude of sync corrections) and derives confidence,
// clarity, and doubt. Nothing here feeds back into the core loop; the caller
// only reports it.
package awareness

import (
	"fmt"

	"github.com/liminallabs/voicecore/internal/metrics"
	"github.com/liminallabs/voicecore/internal/stabilizer"
)

// MetaCognition tracks the system's assessment of its own state.
type MetaCognition struct {
	SelfDrift        float64 // how much our own parameters are moving
	SelfResonance    float64 // how present/settled the system feels
	Confidence       float64 // trust in the current measurements
	Clarity          float64 // understanding of the situation
	Doubt            float64 // inverse of confidence, floored
	ObservationCount int
}

// NewMetaCognition starts from a neutral self-assessment.
func NewMetaCognition() *MetaCognition {
	return &MetaCognition{
		SelfDrift:     0.0,
		SelfResonance: 1.0,
		Confidence:    0.5,
		Clarity:       0.5,
		Doubt:         0.5,
	}
}

// Observe folds one turn's core outputs into the self-model. syncCorrections
// is the magnitude of the sync controller's fast-path output this turn.
func (m *MetaCognition) Observe(measuredDrift, measuredRes float64, state stabilizer.State, syncCorrections float64) {
	m.ObservationCount++

	// Large corrections mean our own parameters are in flux.
	if syncCorrections < 0 {
		syncCorrections = -syncCorrections
	}
	m.SelfDrift = metrics.Clamp01(syncCorrections * 5.0)

	switch state {
	case stabilizer.Normal:
		m.SelfResonance = metrics.Clamp01(measuredRes + 0.1)
	case stabilizer.Warming:
		m.SelfResonance = metrics.Clamp01(measuredRes)
	case stabilizer.Overheat:
		m.SelfResonance = metrics.Clamp01(measuredRes - 0.2)
	case stabilizer.Cooldown:
		m.SelfResonance = metrics.Clamp01(measuredRes - 0.1)
	default:
		m.SelfResonance = measuredRes
	}

	m.Confidence = metrics.Clamp01((1.0 - measuredDrift) * measuredRes)

	// Clarity grows with observations, capped so it still tracks confidence.
	observationBonus := float64(m.ObservationCount) * 0.05
	if observationBonus > 0.3 {
		observationBonus = 0.3
	}
	m.Clarity = metrics.Clamp01(m.Confidence + observationBonus)

	m.Doubt = metrics.Clamp01(1.0 - m.Confidence)
	if m.Doubt < 0.1 {
		m.Doubt = 0.1
	}
}

// ShouldExpressDoubt reports whether uncertainty is high enough to surface.
func (m *MetaCognition) ShouldExpressDoubt() bool {
	return m.Doubt > 0.6 && m.Confidence < 0.4
}

// IsClearAndStable reports whether the self-model reads as settled.
func (m *MetaCognition) IsClearAndStable() bool {
	return m.Clarity > 0.7 && m.SelfDrift < 0.3
}

// SelfAssess renders the one-line self-assessment.
func (m *MetaCognition) SelfAssess() string {
	state := "Observing"
	switch {
	case m.IsClearAndStable():
		state = "Clear & Stable"
	case m.ShouldExpressDoubt():
		state = "Uncertain"
	case m.SelfDrift > 0.5:
		state = "Self-Adjusting"
	}

	return fmt.Sprintf("self_state=%s conf=%.2f clarity=%.2f doubt=%.2f",
		state, m.Confidence, m.Clarity, m.Doubt)
}

// MetaStabilizer smooths the meta layer itself with a simple EMA so one noisy
// turn does not whipsaw the self-assessment.
type MetaStabilizer struct {
	emaSelfDrift  float64
	emaConfidence float64
	alpha         float64
}

// NewMetaStabilizer builds a meta stabilizer with the given smoothing factor.
func NewMetaStabilizer(alpha float64) *MetaStabilizer {
	return &MetaStabilizer{
		emaSelfDrift:  0.0,
		emaConfidence: 0.5,
		alpha:         alpha,
	}
}

// Update folds one meta-cognition snapshot into the EMAs.
func (s *MetaStabilizer) Update(m *MetaCognition) {
	s.emaSelfDrift = s.alpha*m.SelfDrift + (1-s.alpha)*s.emaSelfDrift
	s.emaConfidence = s.alpha*m.Confidence + (1-s.alpha)*s.emaConfidence
}

// StableMetrics returns the smoothed (self-drift, confidence) pair.
func (s *MetaStabilizer) StableMetrics() (selfDrift, confidence float64) {
	return s.emaSelfDrift, s.emaConfidence
}

// NeedsMoreAwareness reports whether the smoothed meta layer is unsettled.
func (s *MetaStabilizer) NeedsMoreAwareness() bool {
	return s.emaSelfDrift > 0.4 || s.emaConfidence < 0.5
}
