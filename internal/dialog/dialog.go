// Package dialog supplies the fixed turn sequence for a run: an inputs file
// beats an inline script, which beats the default utterance.
package dialog

import (
	"os"
	"strings"

	"github.com/liminallabs/voicecore/internal/logging"
)

const defaultUtterance = "hello liminal"

// DefaultUtterance is the stand-in used when no inputs are configured
func DefaultUtterance() string {
	return defaultUtterance
}

// LoadInputs resolves the run's utterances. inputsPath is one utterance per
// line; script is semicolon-separated; otherwise the default utterance is
// repeated cycles times.
func LoadInputs(inputsPath, script string, cycles int) []string {
	if inputsPath != "" {
		raw, err := os.ReadFile(inputsPath)
		if err != nil {
			logging.Warn("dialog", "failed to read inputs file %s: %v", inputsPath, err)
		} else {
			var lines []string
			for _, line := range strings.Split(string(raw), "\n") {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					lines = append(lines, trimmed)
				}
			}
			if len(lines) > 0 {
				return lines
			}
		}
	}

	if script != "" {
		var parts []string
		for _, part := range strings.Split(script, ";") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}

	if cycles < 1 {
		cycles = 1
	}
	out := make([]string, cycles)
	for i := range out {
		out[i] = defaultUtterance
	}
	return out
}

// Pad extends utterances to cycles entries, repeating the default utterance
func Pad(utterances []string, cycles int) []string {
	if len(utterances) >= cycles {
		return utterances
	}
	out := make([]string, cycles)
	for i := 0; i < cycles; i++ {
		if i < len(utterances) {
			out[i] = utterances[i]
		} else {
			out[i] = defaultUtterance
		}
	}
	return out
}
