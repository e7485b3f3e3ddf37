package metrics

import (
	"fmt"
	"time"
)

// Clamp01 constrains v to [0, 1]. Every signal in the pipeline is kept in
// this range after arithmetic updates.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp constrains v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt constrains v to [lo, hi].
func ClampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Hash01 maps a string to two stable floats in [0, 1] using FNV-1a 64.
// Used for topic-key derivation and pseudo-randomized scoring.
func Hash01(s string) (float64, float64) {
	var h uint64 = 0xcbf29ce484222325
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 0x100000001b3
	}

	a := float64((h>>11)&0xFFFF) / 65535.0
	b := float64((h>>27)&0xFFFF) / 65535.0
	return a, b
}

// VoiceMetrics collects per-turn latency timings
type VoiceMetrics struct {
	StartTS time.Time
	ASRMs   int64
	TTSMs   int64
	TotalMs int64
}

// Start begins timing a turn
func Start() *VoiceMetrics {
	return &VoiceMetrics{StartTS: time.Now()}
}

// Finish records the total elapsed time for the turn
func (vm *VoiceMetrics) Finish() {
	vm.TotalMs = time.Since(vm.StartTS).Milliseconds()
}

// String renders the timings in the log line format
func (vm *VoiceMetrics) String() string {
	return fmt.Sprintf("asr=%dms tts=%dms total=%dms", vm.ASRMs, vm.TTSMs, vm.TotalMs)
}
