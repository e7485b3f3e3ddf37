// Package qa scores each utterance with a pseudo drift/resonance pair. Real
// semantic analysis lives outside this system; the hash-derived stand-in is
// deterministic per utterance, which is what the regulation core needs.
package qa

import (
	"github.com/liminallabs/voicecore/internal/metrics"
	"github.com/liminallabs/voicecore/internal/prosody"
)

// AnalyzePrompt maps an utterance to a (drift, resonance) pair in [0,1]
func AnalyzePrompt(input string) (drift, res float64) {
	drift, res = metrics.Hash01(input)
	return metrics.Clamp01(drift), metrics.Clamp01(res)
}

// ApplyProsodyBias nudges the measured pair by the detected tone
func ApplyProsodyBias(drift, res float64, tone prosody.ToneTag) (float64, float64) {
	switch tone {
	case prosody.Calm:
		res += 0.02
	case prosody.Energetic:
		res -= 0.01
		drift += 0.02
	}
	return metrics.Clamp01(drift), metrics.Clamp01(res)
}
