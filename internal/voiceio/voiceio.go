// Package voiceio stands in for the audio path. Capture and synthesis only
// simulate their latency (device pause plus frame time) so the regulation
// loop sees realistic timing without touching real hardware.
package voiceio

import (
	"fmt"
	"time"

	"github.com/liminallabs/voicecore/internal/config"
	"github.com/liminallabs/voicecore/internal/device"
	"github.com/liminallabs/voicecore/internal/dialog"
)

// Transcribe simulates ASR capture and returns the "recognized" utterance.
func Transcribe(cfg config.Config, prof device.Profile) string {
	fmt.Printf("[cfg] mode=%s sr=%d ch=%d frame=%dms\n",
		cfg.Mode, cfg.SampleRate, cfg.Channels, cfg.FrameMs)
	fmt.Println("[voice] ASR capturing...")

	latency := asrLatency(cfg, prof)
	time.Sleep(latency)

	fmt.Printf("[voice] ASR done (latency=%dms)\n", latency.Milliseconds())
	return dialog.DefaultUtterance()
}

// Synthesize simulates TTS rendering of the response text.
func Synthesize(cfg config.Config, prof device.Profile, text string) {
	latency := ttsLatency(cfg, prof)
	fmt.Println("[voice] TTS rendering...")
	time.Sleep(latency)

	fmt.Printf("[voice] TTS done (latency=%dms)\n", latency.Milliseconds())
	fmt.Printf("→ [voice]: %s\n", text)
	fmt.Printf("[voice] audio sr=%d ch=%d gain=%.1fdB\n",
		cfg.SampleRate, cfg.Channels, prof.GainDB)
}

// TranscribeLike simulates capture of a scripted utterance: same latency
// path as Transcribe, but the recognized text is the script line.
func TranscribeLike(cfg config.Config, prof device.Profile, utterance string) string {
	fmt.Printf("[cfg] mode=%s sr=%d ch=%d frame=%dms\n",
		cfg.Mode, cfg.SampleRate, cfg.Channels, cfg.FrameMs)
	fmt.Println("[voice] ASR capturing...")

	latency := asrLatency(cfg, prof)
	time.Sleep(latency)

	fmt.Printf("[voice] ASR done (latency=%dms)\n", latency.Milliseconds())
	return utterance
}

// SynthesizeWith renders with regulated pacing instead of the raw device
// profile. pauseMs drives the simulated latency.
func SynthesizeWith(cfg config.Config, prof device.Profile, pace float64, pauseMs int64, text string) {
	ms := pauseMs/2 + int64(cfg.FrameMs)
	if ms < 0 {
		ms = 0
	}
	latency := time.Duration(ms) * time.Millisecond

	fmt.Printf("[voice] TTS rendering (pace=%.2f pause=%dms)...\n", pace, pauseMs)
	time.Sleep(latency)

	fmt.Printf("[voice] TTS done (latency=%dms)\n", latency.Milliseconds())
	fmt.Printf("→ [voice]: %s\n", text)
	fmt.Printf("[voice] audio sr=%d ch=%d gain=%.1fdB\n",
		cfg.SampleRate, cfg.Channels, prof.GainDB)
}

func asrLatency(cfg config.Config, prof device.Profile) time.Duration {
	return time.Duration(prof.PauseMs+int64(cfg.FrameMs)) * time.Millisecond
}

// TTS renders faster than capture: half the device pause plus one frame.
func ttsLatency(cfg config.Config, prof device.Profile) time.Duration {
	ms := prof.PauseMs/2 + int64(cfg.FrameMs)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}
