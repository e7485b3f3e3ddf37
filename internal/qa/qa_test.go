package qa

import (
	"testing"

	"github.com/liminallabs/voicecore/internal/prosody"
)

func TestAnalyzePrompt_DeterministicAndBounded(t *testing.T) {
	d1, r1 := AnalyzePrompt("hello liminal")
	d2, r2 := AnalyzePrompt("hello liminal")
	if d1 != d2 || r1 != r2 {
		t.Error("same utterance must score identically")
	}
	if d1 < 0 || d1 > 1 || r1 < 0 || r1 > 1 {
		t.Errorf("scores (%v, %v) out of [0,1]", d1, r1)
	}
}

func TestApplyProsodyBias(t *testing.T) {
	d, r := ApplyProsodyBias(0.5, 0.5, prosody.Calm)
	if d != 0.5 || r <= 0.5 {
		t.Errorf("Calm bias = (%v, %v), want resonance lifted only", d, r)
	}

	d, r = ApplyProsodyBias(0.5, 0.5, prosody.Energetic)
	if d <= 0.5 || r >= 0.5 {
		t.Errorf("Energetic bias = (%v, %v), want drift up and resonance down", d, r)
	}

	d, r = ApplyProsodyBias(0.5, 0.5, prosody.Neutral)
	if d != 0.5 || r != 0.5 {
		t.Errorf("Neutral bias = (%v, %v), want unchanged", d, r)
	}

	// Bias never escapes the unit interval
	if _, r := ApplyProsodyBias(0.99, 0.999, prosody.Calm); r > 1 {
		t.Errorf("resonance %v escaped [0,1]", r)
	}
}
