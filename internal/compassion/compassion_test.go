package compassion

import (
	"strings"
	"testing"

	"github.com/liminallabs/voicecore/internal/prosody"
	"github.com/liminallabs/voicecore/internal/stabilizer"
)

func TestNew(t *testing.T) {
	c := New()
	if c.UserSuffering != 0 {
		t.Errorf("UserSuffering = %v, want 0", c.UserSuffering)
	}
	if c.SufferingType != None {
		t.Errorf("SufferingType = %v, want None", c.SufferingType)
	}
	if c.ResponseKindness <= 0 {
		t.Errorf("ResponseKindness = %v, want > 0", c.ResponseKindness)
	}
}

func TestDetectSuffering_ChaosPattern(t *testing.T) {
	c := New()
	c.DetectSuffering(0.9, 0.3, prosody.Energetic, 150, stabilizer.Overheat, false)

	if c.UserSuffering <= 0.5 {
		t.Errorf("UserSuffering = %v, want > 0.5", c.UserSuffering)
	}
	if c.SufferingType != Moderate && c.SufferingType != Severe {
		t.Errorf("SufferingType = %v, want Moderate or Severe", c.SufferingType)
	}
}

func TestDetectSuffering_CalmTurnIsNone(t *testing.T) {
	c := New()
	c.DetectSuffering(0.2, 0.8, prosody.Calm, 110, stabilizer.Normal, false)

	if c.SufferingType != None {
		t.Errorf("SufferingType = %v, want None", c.SufferingType)
	}
	if c.SufferingCount != 0 {
		t.Errorf("SufferingCount = %d, want 0", c.SufferingCount)
	}
}

func TestDetectSuffering_StreakBuildsAndResets(t *testing.T) {
	c := New()

	c.DetectSuffering(0.6, 0.5, prosody.Neutral, 150, stabilizer.Normal, true)
	first := c.UserSuffering
	c.DetectSuffering(0.6, 0.5, prosody.Neutral, 150, stabilizer.Normal, true)
	second := c.UserSuffering

	if second < first {
		t.Errorf("suffering dropped across a streak: %v then %v", first, second)
	}
	if c.SufferingStreak != 2 {
		t.Errorf("SufferingStreak = %d, want 2", c.SufferingStreak)
	}

	// Third repeated turn crosses the streak threshold and adds more weight
	c.DetectSuffering(0.6, 0.5, prosody.Neutral, 150, stabilizer.Normal, true)
	third := c.UserSuffering
	if third <= second {
		t.Errorf("streak > 2 should raise the score: %v then %v", second, third)
	}

	c.DetectSuffering(0.2, 0.8, prosody.Neutral, 150, stabilizer.Normal, false)
	if c.SufferingStreak != 0 {
		t.Errorf("SufferingStreak = %d after fresh theme, want 0", c.SufferingStreak)
	}
}

func TestDetectSuffering_FastEnergeticSpeech(t *testing.T) {
	c := New()
	c.DetectSuffering(0.2, 0.8, prosody.Energetic, 200, stabilizer.Normal, false)
	if c.UserSuffering < 0.2 {
		t.Errorf("UserSuffering = %v, want anxiety signal >= 0.2", c.UserSuffering)
	}

	// Same speed but neutral tone does not trip the pattern
	c2 := New()
	c2.DetectSuffering(0.2, 0.8, prosody.Neutral, 200, stabilizer.Normal, false)
	if c2.UserSuffering != 0 {
		t.Errorf("UserSuffering = %v for neutral fast speech, want 0", c2.UserSuffering)
	}
}

func TestCalculateKindness(t *testing.T) {
	c := New()
	c.CalculateKindness(true, -0.05, 25, 0.03)
	if c.ResponseKindness <= 0.7 {
		t.Errorf("ResponseKindness = %v, want > 0.7", c.ResponseKindness)
	}

	// Harsh response earns no bonuses
	c.CalculateKindness(false, 0.05, -10, 0)
	if c.ResponseKindness != 0.5 {
		t.Errorf("ResponseKindness = %v, want baseline 0.5", c.ResponseKindness)
	}
}

func TestCompassionActivation(t *testing.T) {
	c := New()
	c.DetectSuffering(0.95, 0.2, prosody.Energetic, 200, stabilizer.Overheat, true)
	c.CalculateKindness(true, -0.1, 50, 0.05)
	c.UpdateCompassionLevel()

	if !c.ShouldActivate() {
		t.Errorf("compassion should activate at level %v", c.CompassionLevel)
	}
	if !c.ShouldOfferSupport() {
		t.Errorf("support should be offered for %v suffering", c.SufferingType)
	}
	if !strings.Contains(c.StatusMessage(), "suffering=") {
		t.Errorf("status = %q", c.StatusMessage())
	}
}

func TestAdjustmentsScaleWithLevel(t *testing.T) {
	c := New()
	c.CompassionLevel = 0.8

	adj := AdjustmentsFor(c)
	if adj.ResonanceBoost <= 0 {
		t.Errorf("ResonanceBoost = %v, want > 0", adj.ResonanceBoost)
	}
	if adj.PaceAdjustment >= 0 {
		t.Errorf("PaceAdjustment = %v, want < 0", adj.PaceAdjustment)
	}
	if adj.PauseAdjustMs != 24 {
		t.Errorf("PauseAdjustMs = %d, want 24", adj.PauseAdjustMs)
	}
	if adj.DriftReduction <= 0 {
		t.Errorf("DriftReduction = %v, want > 0", adj.DriftReduction)
	}

	zero := AdjustmentsFor(New())
	if zero.ResonanceBoost != 0 || zero.PauseAdjustMs != 0 {
		t.Errorf("inactive compassion should produce zero adjustments: %+v", zero)
	}
}
