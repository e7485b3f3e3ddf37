// Package device maps an output device class to baseline synthesis
// parameters. The profiles are static; only classification is dynamic.
package device

import (
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/liminallabs/voicecore/internal/logging"
)

// Mode identifies the output device class
type Mode int

const (
	Phone Mode = iota
	Headset
	Terminal
)

func (m Mode) String() string {
	switch m {
	case Headset:
		return "Headset"
	case Terminal:
		return "Terminal"
	default:
		return "Phone"
	}
}

// Profile holds per-device synthesis baselines
type Profile struct {
	GainDB     float64
	PaceFactor float64
	PauseMs    int64
}

// Detect resolves a mode string. "auto" classifies the host machine;
// anything unrecognized falls back to Phone.
func Detect(modeStr string) Mode {
	switch strings.ToLower(strings.TrimSpace(modeStr)) {
	case "phone":
		return Phone
	case "headset":
		return Headset
	case "terminal":
		return Terminal
	case "auto":
		return classifyHost()
	default:
		return Phone
	}
}

// GetProfile returns the static baseline for a mode
func GetProfile(mode Mode) Profile {
	switch mode {
	case Headset:
		return Profile{GainDB: 0.0, PaceFactor: 1.00, PauseMs: 40}
	case Terminal:
		return Profile{GainDB: 1.5, PaceFactor: 0.95, PauseMs: 80}
	default:
		return Profile{GainDB: -2.0, PaceFactor: 1.05, PauseMs: 60}
	}
}

// classifyHost picks a profile class from the host's resources: small
// machines behave like phones, mid-sized like headset companions, and
// anything with workstation-class memory gets the terminal profile.
func classifyHost() Mode {
	cores, err := cpu.Counts(true)
	if err != nil {
		logging.Debug("device", "cpu probe failed: %v", err)
		return Phone
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		logging.Debug("device", "memory probe failed: %v", err)
		return Phone
	}

	gb := vm.Total / (1 << 30)
	switch {
	case cores <= 2 || gb < 4:
		return Phone
	case gb < 16:
		return Headset
	default:
		return Terminal
	}
}
