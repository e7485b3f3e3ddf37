// Package session writes one JSONL snapshot per turn to a per-run log file.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SyncDelta mirrors the controller's per-turn correction for logging
type SyncDelta struct {
	PaceDelta    float64 `json:"pace_delta"`
	PauseDeltaMs int64   `json:"pause_delta_ms"`
	ResBoost     float64 `json:"res_boost"`
	DriftRelief  float64 `json:"drift_relief"`
}

// Snapshot is one turn's observable state
type Snapshot struct {
	TS           string     `json:"ts"`
	Device       string     `json:"device"`
	Drift        float64    `json:"drift"`
	Resonance    float64    `json:"resonance"`
	WPM          float64    `json:"wpm"`
	Articulation float64    `json:"articulation"`
	Tone         string     `json:"tone"`
	ASRMs        int64      `json:"asr_ms"`
	TTSMs        int64      `json:"tts_ms"`
	TotalMs      int64      `json:"total_ms"`
	Idx          int        `json:"idx"`
	Utterance    string     `json:"utt"`
	Guard        *string    `json:"guard"`
	State        *string    `json:"state"`
	EmoteState   *string    `json:"emote_state"`
	Sync         *SyncDelta `json:"sync,omitempty"`

	MetaSelfDrift     *float64 `json:"meta_self_drift,omitempty"`
	MetaSelfResonance *float64 `json:"meta_self_resonance,omitempty"`
	MetaConfidence    *float64 `json:"meta_confidence,omitempty"`
	MetaClarity       *float64 `json:"meta_clarity,omitempty"`
	MetaDoubt         *float64 `json:"meta_doubt,omitempty"`

	CompassionSuffering *float64 `json:"compassion_suffering,omitempty"`
	CompassionType      *string  `json:"compassion_type,omitempty"`
	CompassionKindness  *float64 `json:"compassion_kindness,omitempty"`
	CompassionHealing   *float64 `json:"compassion_healing,omitempty"`
	CompassionLevel     *float64 `json:"compassion_level,omitempty"`
}

// Session owns the per-run log file
type Session struct {
	ID     string
	Cycles int
	LogDir string
	file   *os.File
}

// Start creates a session handle; Open must be called before Write
func Start(cycles int, logDir string) *Session {
	return &Session{
		ID:     generateID(),
		Cycles: cycles,
		LogDir: logDir,
	}
}

// Open creates the log file and its parent directory
func (s *Session) Open() error {
	path := s.Path()
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	s.file = f
	return nil
}

// Write appends one snapshot line
func (s *Session) Write(snap *Snapshot) error {
	if s.file == nil {
		return fmt.Errorf("session file not opened")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.file.Write(append(data, '\n'))
	return err
}

// Close flushes and releases the log file
func (s *Session) Close() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
}

// Path is the session log location
func (s *Session) Path() string {
	return filepath.Join(s.LogDir, fmt.Sprintf("session-%s.jsonl", s.ID))
}

// NowRFC3339 formats the current time for snapshots
func NowRFC3339() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// generateID derives a short run identifier from the clock
func generateID() string {
	hex := fmt.Sprintf("%016x", time.Now().UnixNano())
	return hex[len(hex)-8:]
}
