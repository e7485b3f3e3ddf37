package stabilizer

import (
	"fmt"
	"math"

	"github.com/liminallabs/voicecore/internal/metrics"
)

// State classifies the recent signal trend
type State int

const (
	Normal State = iota
	Warming
	Overheat
	Cooldown
)

func (s State) String() string {
	switch s {
	case Normal:
		return "Normal"
	case Warming:
		return "Warming"
	case Overheat:
		return "Overheat"
	case Cooldown:
		return "Cooldown"
	default:
		return "Unknown"
	}
}

// Config controls the stabilizer. Out-of-domain values are clamped by New,
// never rejected.
type Config struct {
	Window    int     // ring buffer capacity, >= 1
	EMAAlpha  float64 // EMA smoothing factor, [0, 1]
	WarmDrift float64 // drift threshold for Warming
	HotDrift  float64 // drift threshold for Overheat
	LowRes    float64 // resonance threshold for Overheat
	CoolSteps int     // sub-threshold pushes required to exit Cooldown, >= 1
	CalmBoost float64 // extra damping applied in Overheat advice, [0, 0.2]
}

// Advice is a per-state correction for the caller to apply under its own
// device clamps
type Advice struct {
	PaceDelta        float64
	PauseDeltaMs     int64
	ArticulationHint float64
}

// Stabilizer smooths noisy per-turn drift/resonance signals and classifies
// the system's temperament. One instance per run; never persisted.
type Stabilizer struct {
	Cfg          Config
	State        State
	StepsInState int
	EMADrift     float64
	EMARes       float64

	// Fixed-window sample bookkeeping. The ring is written every push but
	// not read back; the EMA recurrence alone drives classification.
	ringDrift   []float64
	ringRes     []float64
	idx         int
	initialized bool
}

// New validates the configuration by clamping and returns a stabilizer in
// the Normal state.
func New(cfg Config) *Stabilizer {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	cfg.EMAAlpha = metrics.Clamp01(cfg.EMAAlpha)
	cfg.WarmDrift = metrics.Clamp01(cfg.WarmDrift)
	cfg.HotDrift = metrics.Clamp01(cfg.HotDrift)
	cfg.LowRes = metrics.Clamp01(cfg.LowRes)
	if cfg.CoolSteps < 1 {
		cfg.CoolSteps = 1
	}
	cfg.CalmBoost = metrics.Clamp(cfg.CalmBoost, 0, 0.2)

	return &Stabilizer{
		Cfg:       cfg,
		State:     Normal,
		ringDrift: make([]float64, cfg.Window),
		ringRes:   make([]float64, cfg.Window),
	}
}

// Push feeds one turn's measured drift/resonance pair into the stabilizer,
// updating the EMA and the temperament state. Inputs are clamped to [0,1].
func (s *Stabilizer) Push(drift, res float64) {
	drift = metrics.Clamp01(drift)
	res = metrics.Clamp01(res)

	s.ringDrift[s.idx] = drift
	s.ringRes[s.idx] = res
	s.idx = (s.idx + 1) % len(s.ringDrift)

	if !s.initialized {
		s.EMADrift = drift
		s.EMARes = res
		s.initialized = true
	} else {
		alpha := s.Cfg.EMAAlpha
		s.EMADrift = alpha*drift + (1-alpha)*s.EMADrift
		s.EMARes = alpha*res + (1-alpha)*s.EMARes
	}

	s.EMADrift = metrics.Clamp01(s.EMADrift)
	s.EMARes = metrics.Clamp01(s.EMARes)

	var next State
	switch {
	case drift >= s.Cfg.HotDrift && res <= s.Cfg.LowRes:
		next = Overheat
	case drift >= s.Cfg.WarmDrift:
		next = Warming
	default:
		switch s.State {
		case Overheat:
			if s.StepsInState+1 < s.Cfg.CoolSteps {
				next = Cooldown
			} else {
				next = Normal
			}
		case Cooldown:
			if s.StepsInState+1 >= s.Cfg.CoolSteps {
				next = Normal
			} else {
				next = Cooldown
			}
		default:
			next = Normal
		}
	}

	if next != s.State {
		s.State = next
		s.StepsInState = 0
	} else {
		// saturating counter so a long stay cannot overflow the exit check
		if s.StepsInState+1 > 2*s.Cfg.CoolSteps {
			s.StepsInState = 2 * s.Cfg.CoolSteps
		} else {
			s.StepsInState++
		}
	}
}

// Advice returns the pacing correction for the current state. Pure lookup;
// no state is mutated.
func (s *Stabilizer) Advice() Advice {
	switch s.State {
	case Warming:
		return Advice{PaceDelta: -0.03, PauseDeltaMs: 10, ArticulationHint: 0.02}
	case Overheat:
		return Advice{
			PaceDelta:        -0.07 - s.Cfg.CalmBoost,
			PauseDeltaMs:     30 + int64(math.Round(s.Cfg.CalmBoost*100)),
			ArticulationHint: 0.05,
		}
	case Cooldown:
		return Advice{PaceDelta: -0.04, PauseDeltaMs: 20, ArticulationHint: 0.03}
	default:
		return Advice{}
	}
}

// FormatStatus renders the state line printed once per turn
func FormatStatus(state State, emaDrift, emaRes float64) string {
	return fmt.Sprintf("[stabilizer] state=%s ema_drift=%.2f ema_res=%.2f",
		state, metrics.Clamp01(emaDrift), metrics.Clamp01(emaRes))
}
