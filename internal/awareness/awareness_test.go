package awareness

import (
	"strings"
	"testing"

	"github.com/liminallabs/voicecore/internal/stabilizer"
)

func TestNewMetaCognition(t *testing.T) {
	m := NewMetaCognition()
	if m.ObservationCount != 0 {
		t.Errorf("ObservationCount = %d, want 0", m.ObservationCount)
	}
	if m.Confidence <= 0 || m.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0,1]", m.Confidence)
	}
}

func TestObserve_ClarityGrowsWithObservations(t *testing.T) {
	m := NewMetaCognition()
	initial := m.Clarity

	for i := 0; i < 5; i++ {
		m.Observe(0.2, 0.8, stabilizer.Normal, 0.01)
	}

	if m.Clarity <= initial {
		t.Errorf("Clarity = %v after 5 observations, want > %v", m.Clarity, initial)
	}
}

func TestObserve_ChaosRaisesDoubt(t *testing.T) {
	m := NewMetaCognition()
	m.Observe(0.9, 0.2, stabilizer.Overheat, 0.5)

	if m.Doubt <= 0.5 {
		t.Errorf("Doubt = %v, want > 0.5", m.Doubt)
	}
	if m.Confidence >= 0.5 {
		t.Errorf("Confidence = %v, want < 0.5", m.Confidence)
	}
	if !m.ShouldExpressDoubt() {
		t.Error("ShouldExpressDoubt should be true for chaotic turn")
	}
}

func TestObserve_StateBandsSelfResonance(t *testing.T) {
	res := 0.5
	bands := []struct {
		state stabilizer.State
		want  float64
	}{
		{stabilizer.Normal, 0.6},
		{stabilizer.Warming, 0.5},
		{stabilizer.Overheat, 0.3},
		{stabilizer.Cooldown, 0.4},
	}
	for _, band := range bands {
		m := NewMetaCognition()
		m.Observe(0.3, res, band.state, 0.0)
		if diff := m.SelfResonance - band.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%v: SelfResonance = %v, want %v", band.state, m.SelfResonance, band.want)
		}
	}
}

func TestIsClearAndStable(t *testing.T) {
	m := NewMetaCognition()
	for i := 0; i < 10; i++ {
		m.Observe(0.15, 0.85, stabilizer.Normal, 0.01)
	}
	if !m.IsClearAndStable() {
		t.Errorf("should be clear and stable: clarity=%v selfDrift=%v", m.Clarity, m.SelfDrift)
	}
	if !strings.Contains(m.SelfAssess(), "Clear & Stable") {
		t.Errorf("SelfAssess = %q", m.SelfAssess())
	}
}

func TestDoubtFloor(t *testing.T) {
	m := NewMetaCognition()
	m.Observe(0.0, 1.0, stabilizer.Normal, 0.0)
	if m.Doubt < 0.1 {
		t.Errorf("Doubt = %v, want floored at 0.1", m.Doubt)
	}
}

func TestMetaStabilizer(t *testing.T) {
	s := NewMetaStabilizer(0.3)
	m := NewMetaCognition()

	m.Observe(0.5, 0.5, stabilizer.Normal, 0.1)
	s.Update(m)

	drift, conf := s.StableMetrics()
	if drift < 0 || drift > 1 || conf < 0 || conf > 1 {
		t.Errorf("stable metrics = (%v, %v), want within [0,1]", drift, conf)
	}

	// Low confidence after a shaky start should flag more awareness
	for i := 0; i < 10; i++ {
		m.Observe(0.9, 0.2, stabilizer.Overheat, 0.2)
		s.Update(m)
	}
	if !s.NeedsMoreAwareness() {
		t.Error("NeedsMoreAwareness should be true after sustained chaos")
	}
}
