// Package syncctl implements the residual-feedback controller that nudges
// per-turn pacing toward the configured drift/resonance baselines. A fast
// learning rate produces bounded per-turn corrections; a slow accumulator is
// folded back into long-term topic memory at the end of a run.
package syncctl

import (
	"math"

	"github.com/liminallabs/voicecore/internal/metrics"
	"github.com/liminallabs/voicecore/internal/stabilizer"
)

// Baselines are the regulation targets for the whole run
type Baselines struct {
	Drift float64
	Res   float64
}

// Seeds are one-shot biases applied by the caller on the first turn only
type Seeds struct {
	PaceBias    float64
	PauseBiasMs int64
	ResWarm     float64
	DriftSoft   float64
}

// Config holds the controller learning rates
type Config struct {
	LRFast    float64 // per-turn fast-path gain
	LRSlow    float64 // end-of-run slow-path gain
	ClampStep float64 // per-turn correction bound
}

// Delta is the fast-path correction for one turn
type Delta struct {
	PaceDelta    float64
	PauseDeltaMs int64
	ResBoost     float64
	DriftRelief  float64
}

// State carries the controller's accumulators across a run
type State struct {
	Baselines  Baselines
	Seeds      Seeds
	AccumDrift float64
	AccumRes   float64
	Steps      int
}

// WarmStart resets the accumulators and installs the seed biases and
// baselines for the run
func (s *State) WarmStart(seeds Seeds, base Baselines) {
	s.Seeds = seeds
	s.Baselines = base
	s.AccumDrift = 0
	s.AccumRes = 0
	s.Steps = 0
}

// Step converts the gap to baseline into a bounded correction. When the
// stabilizer reports Overheat an extra fixed penalty is added after the
// clamps; the final pace/pause may exceed the nominal step bound by that
// fixed amount. That asymmetric extra damping is intentional.
func (s *State) Step(drift, res float64, state stabilizer.State, cfg Config) Delta {
	dDrift := metrics.Clamp(drift-s.Baselines.Drift, -1, 1)
	dRes := metrics.Clamp(s.Baselines.Res-res, -1, 1)

	s.AccumDrift += dDrift
	s.AccumRes += dRes
	s.Steps++

	c := cfg.ClampStep
	pace := metrics.Clamp(-cfg.LRFast*dDrift, -c, c)
	pause := metrics.ClampInt(int64(cfg.LRFast*dRes*80), -20, 40)
	resBoost := metrics.Clamp(cfg.LRFast*math.Max(dRes, 0)*0.05, 0, c)
	driftRelief := metrics.Clamp(cfg.LRFast*math.Max(-dDrift, 0)*0.05, 0, c)

	if state == stabilizer.Overheat {
		pace -= 0.01
		pause += 10
	}

	return Delta{
		PaceDelta:    pace,
		PauseDeltaMs: pause,
		ResBoost:     resBoost,
		DriftRelief:  driftRelief,
	}
}

// ToSlowIncrements returns the session-level mean-residual biases to fold
// into long-term topic memory. Pure read; both values are bounded to ±0.03.
func (s *State) ToSlowIncrements(cfg Config) (driftBias, resBias float64) {
	if s.Steps == 0 {
		return 0, 0
	}
	meanDrift := s.AccumDrift / float64(s.Steps)
	meanRes := s.AccumRes / float64(s.Steps)
	driftBias = metrics.Clamp(-meanDrift*cfg.LRSlow, -0.03, 0.03)
	resBias = metrics.Clamp(meanRes*cfg.LRSlow, -0.03, 0.03)
	return driftBias, resBias
}

// MergeSeeds combines the emotive, device, and topic-memory seed
// contributions into the one-shot warm-start biases
func MergeSeeds(emoteRes, emoteDrift float64, devPace float64, devPauseMs int64, astroRes, astroDrift float64) Seeds {
	return Seeds{
		PaceBias:    devPace,
		PauseBiasMs: devPauseMs,
		ResWarm:     (emoteRes + astroRes) * 0.5,
		DriftSoft:   (emoteDrift + astroDrift) * 0.5,
	}
}
