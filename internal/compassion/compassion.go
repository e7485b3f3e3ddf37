// Package compassion detects distress in the conversational metrics and
// derives gentle adjustments: more resonance, slower pace, more space.
package compassion

import (
	"fmt"

	"github.com/liminallabs/voicecore/internal/metrics"
	"github.com/liminallabs/voicecore/internal/prosody"
	"github.com/liminallabs/voicecore/internal/stabilizer"
)

// SufferingType classifies the detected distress level.
type SufferingType int

const (
	None SufferingType = iota
	Mild
	Moderate
	Severe
)

func (s SufferingType) String() string {
	switch s {
	case Mild:
		return "Mild"
	case Moderate:
		return "Moderate"
	case Severe:
		return "Severe"
	default:
		return "None"
	}
}

// Metrics is the per-session compassion state.
type Metrics struct {
	UserSuffering    float64 // 0=none, 1=severe
	SufferingType    SufferingType
	ResponseKindness float64 // how gentle the system's response was
	HealingIntent    float64 // baseline care plus reaction to suffering
	CompassionLevel  float64 // overall activation
	SufferingCount   int
	SufferingStreak  int // consecutive turns stuck on the same theme
}

// New starts with neutral kindness and a baseline of care.
func New() *Metrics {
	return &Metrics{
		ResponseKindness: 0.5,
		HealingIntent:    0.3,
	}
}

// DetectSuffering scores this turn's distress signals.
func (c *Metrics) DetectSuffering(drift, resonance float64, tone prosody.ToneTag, wpm float64, state stabilizer.State, repeatedTheme bool) {
	score := 0.0

	// Emotional chaos: drifting away while resonance collapses.
	if drift > 0.5 && resonance < 0.6 {
		score += (drift - 0.5) * 2.0
		score += (0.6 - resonance) * 1.5
	}

	// Overwhelmed: the stabilizer already escalated.
	if state == stabilizer.Overheat {
		score += 0.3
	}

	// Anxiety: fast energetic speech.
	if tone == prosody.Energetic && wpm > 180 {
		score += 0.2
	}

	// Stuck: the same theme keeps coming back without progress.
	if repeatedTheme {
		score += 0.25
		c.SufferingStreak++
	} else {
		c.SufferingStreak = 0
	}
	if c.SufferingStreak > 2 {
		score += 0.3
	}

	c.UserSuffering = metrics.Clamp01(score)

	switch {
	case c.UserSuffering < 0.2:
		c.SufferingType = None
	case c.UserSuffering < 0.4:
		c.SufferingType = Mild
	case c.UserSuffering < 0.7:
		c.SufferingType = Moderate
	default:
		c.SufferingType = Severe
	}

	if c.UserSuffering > 0.2 {
		c.SufferingCount++
	}

	c.HealingIntent = metrics.Clamp01(0.3 + c.UserSuffering*0.7)
}

// CalculateKindness scores how gentle this turn's response was, from the
// adjustments the caller actually applied.
func (c *Metrics) CalculateKindness(wasRephrased bool, paceDelta float64, pauseDeltaMs int64, resonanceBoost float64) {
	kindness := 0.5

	if wasRephrased {
		kindness += 0.2
	}
	if paceDelta < 0 {
		kindness += -paceDelta * 0.5
	}
	if pauseDeltaMs > 0 {
		bonus := float64(pauseDeltaMs) / 100.0
		if bonus > 0.2 {
			bonus = 0.2
		}
		kindness += bonus
	}
	if resonanceBoost > 0 {
		kindness += resonanceBoost * 2.0
	}

	c.ResponseKindness = metrics.Clamp01(kindness)
}

// UpdateCompassionLevel folds suffering, intent, and kindness into the
// overall activation level.
func (c *Metrics) UpdateCompassionLevel() {
	c.CompassionLevel = metrics.Clamp01(
		c.UserSuffering*0.5 + c.HealingIntent*0.3 + c.ResponseKindness*0.2)
}

// ShouldActivate reports whether compassionate mode engages this turn.
func (c *Metrics) ShouldActivate() bool {
	return c.CompassionLevel > 0.5
}

// ShouldOfferSupport reports whether distress warrants explicit support.
func (c *Metrics) ShouldOfferSupport() bool {
	return c.SufferingType == Moderate || c.SufferingType == Severe
}

// StatusMessage renders the one-line compassion status.
func (c *Metrics) StatusMessage() string {
	switch c.SufferingType {
	case Mild:
		return fmt.Sprintf("Compassion: Gentle Care (suffering=%.2f, healing=%.2f)",
			c.UserSuffering, c.HealingIntent)
	case Moderate:
		return fmt.Sprintf("Compassion: Active Support (suffering=%.2f, kindness=%.2f)",
			c.UserSuffering, c.ResponseKindness)
	case Severe:
		return fmt.Sprintf("Compassion: Deep Care (suffering=%.2f, streak=%d)",
			c.UserSuffering, c.SufferingStreak)
	default:
		return fmt.Sprintf("Compassion: Observing (suffering=%.2f)", c.UserSuffering)
	}
}

// Adjustments are the gentle nudges the caller applies under its device
// clamps when compassionate mode activates.
type Adjustments struct {
	ResonanceBoost float64
	PaceAdjustment float64 // negative: slow down
	PauseAdjustMs  int64   // positive: more space
	DriftReduction float64
}

// AdjustmentsFor scales the nudges by the current compassion level.
func AdjustmentsFor(c *Metrics) Adjustments {
	level := c.CompassionLevel
	return Adjustments{
		ResonanceBoost: level * 0.1,
		PaceAdjustment: -level * 0.05,
		PauseAdjustMs:  int64(level * 30.0),
		DriftReduction: level * 0.08,
	}
}
