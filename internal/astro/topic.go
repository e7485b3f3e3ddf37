package astro

import (
	"fmt"
	"strings"

	"github.com/liminallabs/voicecore/internal/metrics"
)

// TopicKey derives the store's cache key from normalized utterance text and
// the tone classification. Deterministic: the same utterance and tone always
// map to the same key across runs.
func TopicKey(text, tone string) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	a, b := metrics.Hash01(norm)
	return fmt.Sprintf("%s-%04d%04d", strings.ToLower(tone), int(a*9999), int(b*9999))
}

// NormalizeTheme picks the session theme: the script if present, otherwise
// the first non-empty utterance, otherwise "default". Always lowercased.
func NormalizeTheme(script string, utterances []string) string {
	if trimmed := strings.TrimSpace(script); trimmed != "" {
		return strings.ToLower(trimmed)
	}
	if len(utterances) > 0 {
		if trimmed := strings.TrimSpace(utterances[0]); trimmed != "" {
			return strings.ToLower(trimmed)
		}
	}
	return "default"
}
