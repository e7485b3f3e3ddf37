// Package viz renders the terminal visualizations: sparklines, bar gauges,
// the compact stabilizer line, and the end-of-run metrics table.
package viz

import (
	"fmt"
	"strings"

	"github.com/liminallabs/voicecore/internal/metrics"
	"github.com/liminallabs/voicecore/internal/stabilizer"
)

var glyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const (
	labelWidth = 22
	valueWidth = 25
	barWidth   = 19
)

// Sparkline renders a glyph strip for values in [0,1]
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	maxIndex := float64(len(glyphs) - 1)
	var b strings.Builder
	for _, v := range values {
		idx := int(metrics.Clamp01(v)*maxIndex + 0.5)
		if idx > len(glyphs)-1 {
			idx = len(glyphs) - 1
		}
		b.WriteRune(glyphs[idx])
	}
	return b.String()
}

// Bar renders a '#' gauge for a value in [0,1]
func Bar(value float64, width int) string {
	if width == 0 {
		return ""
	}
	clamped := metrics.Clamp01(value)
	if clamped <= 0 {
		return ""
	}
	filled := int(clamped*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled)
}

// CompactStabilizer prints the one-line stabilizer status
func CompactStabilizer(state stabilizer.State, emaDrift, emaRes float64) {
	fmt.Printf("[stab] %s d=%.2f r=%.2f\n",
		state, metrics.Clamp01(emaDrift), metrics.Clamp01(emaRes))
}

// TableInput carries everything the full table can show; optional rows are
// nil/empty when their subsystem is disabled
type TableInput struct {
	Drift        float64
	Resonance    float64
	WPM          float64
	Articulation float64
	Tone         string
	ASRMs        int64
	TTSMs        int64
	TotalMs      int64
	StabState    string
	EmoteSeed    string
	MetaLine     string
	MetaDetail   string
	MetaDoubtful bool
}

// Table renders the full metrics table and returns its lines
func Table(in TableInput) []string {
	border := fmt.Sprintf("+%s+%s+",
		strings.Repeat("-", labelWidth+2), strings.Repeat("-", valueWidth+2))

	lines := []string{
		border,
		row("Metric", "Value"),
		border,
		row("Semantic Drift", barEntry(in.Drift)),
		row("Resonance", barEntry(in.Resonance)),
		row("WPM", fmt.Sprintf("%.1f", in.WPM)),
		row("Articulation", barEntry(in.Articulation)),
		row("Tone", in.Tone),
		row("Latency (ASR/TTS/T)", fmt.Sprintf("%dms / %dms / %dms", in.ASRMs, in.TTSMs, in.TotalMs)),
	}
	if in.StabState != "" {
		lines = append(lines, row("Stabilizer State", in.StabState))
	}
	if in.EmoteSeed != "" {
		lines = append(lines, row("Emotive Seed", in.EmoteSeed))
	}
	if in.MetaLine != "" {
		lines = append(lines, row("Meta-Cognition", in.MetaLine))
		lines = append(lines, row("  Confidence/Clarity", in.MetaDetail))
		if in.MetaDoubtful {
			lines = append(lines, row("  Status", "UNCERTAIN STATE"))
		}
	}
	lines = append(lines, border)

	for _, line := range lines {
		fmt.Println(line)
	}
	return lines
}

func barEntry(value float64) string {
	bar := Bar(value, barWidth)
	if bar == "" {
		return fmt.Sprintf("%.2f", value)
	}
	return fmt.Sprintf("%.2f  %-*s", value, barWidth, bar)
}

func row(label, value string) string {
	return fmt.Sprintf("| %-*s | %-*s |", labelWidth, label, valueWidth, value)
}
