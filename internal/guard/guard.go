// Package guard applies soft conversational limits: warn when drift runs
// high, rephrase when drift is high and resonance has collapsed.
package guard

import (
	"fmt"
	"strings"
)

// Config holds the guard thresholds
type Config struct {
	DriftLimit     float64
	ResLimit       float64
	RephraseFactor float64
}

// DefaultConfig matches the engine defaults
func DefaultConfig() Config {
	return Config{DriftLimit: 0.40, ResLimit: 0.60, RephraseFactor: 0.2}
}

// Kind discriminates the guard outcome
type Kind int

const (
	None Kind = iota
	Warn
	Rephrased
)

// Action is the guard's verdict for one turn
type Action struct {
	Kind Kind
	Text string // warning message or rephrased utterance
}

// Check evaluates one turn against the limits
func Check(text string, drift, res float64, cfg Config) Action {
	if drift <= cfg.DriftLimit && res >= cfg.ResLimit {
		return Action{Kind: None}
	}

	if drift > cfg.DriftLimit && res >= cfg.ResLimit {
		return Action{
			Kind: Warn,
			Text: fmt.Sprintf("[soft-guard] high drift %.2f, adjusting tone", drift),
		}
	}

	if drift > cfg.DriftLimit && res < cfg.ResLimit {
		t := strings.TrimSpace(text)
		t = strings.ReplaceAll(t, "!", ".")
		t = strings.ReplaceAll(t, "  ", " ")
		return Action{Kind: Rephrased, Text: t + " [recentered]"}
	}

	return Action{Kind: None}
}
