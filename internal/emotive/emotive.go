// Package emotive persists a seed of the system's emotional state between
// runs and decays it back toward neutral with a configurable half-life.
package emotive

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/liminallabs/voicecore/internal/metrics"
)

// Seed is the persisted emotional state
type Seed struct {
	EMADrift float64 `json:"ema_drift"`
	EMARes   float64 `json:"ema_res"`
	Tone     string  `json:"tone"` // "Calm" | "Neutral" | "Energetic"
	WPM      float64 `json:"wpm"`
	TSUnix   int64   `json:"ts"`
}

// Decay targets: with no seed the system behaves as if it woke up here
const (
	neutralDrift = 0.30
	neutralRes   = 0.70
	neutralWPM   = 160.0
	toneKeepMinK = 0.3
)

// LoadLatest returns the newest parseable seed from the append log, or nil
func LoadLatest(path string) *Seed {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == "" {
			continue
		}
		var seed Seed
		if err := json.Unmarshal([]byte(lines[i]), &seed); err != nil {
			continue
		}
		return &seed
	}
	return nil
}

// SaveAppend appends the seed to the log, creating parent directories as
// needed. EMA fields are clamped on the way out.
func SaveAppend(path string, seed *Seed) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	out := *seed
	out.EMADrift = metrics.Clamp01(out.EMADrift)
	out.EMARes = metrics.Clamp01(out.EMARes)

	data, err := json.Marshal(&out)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// Decay interpolates the seed toward neutral by the elapsed half-lives.
// The tone survives only while the seed is still mostly fresh.
func Decay(seed *Seed, now int64, halfLifeMin int) *Seed {
	elapsedSecs := now - seed.TSUnix
	if elapsedSecs < 0 {
		elapsedSecs = 0
	}
	elapsedMins := float64(elapsedSecs) / 60.0

	var k float64
	if halfLifeMin > 0 {
		k = math.Pow(0.5, elapsedMins/float64(halfLifeMin))
	}

	tone := seed.Tone
	if k <= toneKeepMinK {
		tone = "Neutral"
	}

	return &Seed{
		EMADrift: lerp(neutralDrift, seed.EMADrift, k),
		EMARes:   lerp(neutralRes, seed.EMARes, k),
		Tone:     tone,
		WPM:      lerp(neutralWPM, seed.WPM, k),
		TSUnix:   seed.TSUnix,
	}
}

// ApplyBootBias warms the resonance seed at startup, capped at 1
func ApplyBootBias(emaRes *float64, warmBias float64) {
	*emaRes = math.Min(*emaRes+warmBias, 1.0)
}

// lerp pulls value toward target as k falls from 1 to 0
func lerp(target, value, k float64) float64 {
	return target + (value-target)*k
}
