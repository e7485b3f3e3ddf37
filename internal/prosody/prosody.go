// Package prosody derives timing-oriented speech features from utterance
// text and the active device profile. No real audio analysis happens here;
// the features are deterministic stand-ins shaped like the real thing.
package prosody

import (
	"strings"

	"github.com/tsawler/prose/v3"

	"github.com/liminallabs/voicecore/internal/metrics"
)

// ToneTag is a coarse tone classification derived from estimated speech rate
type ToneTag int

const (
	Neutral ToneTag = iota
	Calm
	Energetic
)

func (t ToneTag) String() string {
	switch t {
	case Calm:
		return "Calm"
	case Energetic:
		return "Energetic"
	default:
		return "Neutral"
	}
}

// ParseTone maps a stored tone label back to a tag. Unknown labels are
// Neutral.
func ParseTone(label string) ToneTag {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "calm":
		return Calm
	case "energetic":
		return Energetic
	default:
		return Neutral
	}
}

// Prosody holds the per-utterance features consumed by the regulation loop
type Prosody struct {
	WPM          float64
	Articulation float64
	Tone         ToneTag
	Words        int
}

// Analyze estimates speech-rate features for an utterance under the given
// pacing parameters. Tokenization goes through the prose NLP pipeline so
// punctuation does not count as words; if the pipeline fails the whitespace
// split is close enough.
func Analyze(text string, paceFactor float64, pauseMs int64) Prosody {
	words := countWords(text)
	if words < 1 {
		words = 1
	}

	const baseWPM = 150.0
	pause := float64(pauseMs)
	if pause < 20 {
		pause = 20
	}
	raw := (baseWPM * paceFactor * (40.0 / pause)) / 200.0
	wpm := metrics.Clamp01(raw) * 220.0

	pf := paceFactor
	if pf < 0.1 {
		pf = 0.1
	}
	articulation := metrics.Clamp01((0.85 / pf) * (pause / 80.0))

	tone := Neutral
	if wpm < 120.0 {
		tone = Calm
	} else if wpm > 180.0 {
		tone = Energetic
	}

	return Prosody{
		WPM:          wpm,
		Articulation: articulation,
		Tone:         tone,
		Words:        words,
	}
}

// ApplyArticulationHint folds a stabilizer articulation hint into the
// measured articulation, clamped to [0,1]
func ApplyArticulationHint(articulation, hint float64) float64 {
	return metrics.Clamp01(articulation + hint)
}

func countWords(text string) int {
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return len(strings.Fields(text))
	}

	words := 0
	for _, tok := range doc.Tokens() {
		if strings.ContainsAny(tok.Text, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789") {
			words++
		}
	}
	return words
}
