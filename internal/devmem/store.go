// Package devmem remembers what pacing worked for each device class across
// runs: per-device running means of the session-final parameters, persisted
// as a pipe-delimited flat file.
package devmem

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/liminallabs/voicecore/internal/logging"
)

// Memory is the per-device running average record
type Memory struct {
	AvgPace         float64
	AvgPause        float64
	AvgArticulation float64
	AvgDrift        float64
	AvgRes          float64
	Sessions        int
}

// Store holds device memories keyed by device label
type Store struct {
	Path string
	Data map[string]*Memory
}

// Load reads the store from path. A missing or unreadable file yields an
// empty store; malformed lines are skipped.
func Load(path string) *Store {
	s := &Store{Path: path, Data: make(map[string]*Memory)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("memory", "failed to read %s: %v", path, err)
		}
		return s
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 7 {
			continue
		}
		pace, err1 := strconv.ParseFloat(parts[1], 64)
		pause, err2 := strconv.ParseFloat(parts[2], 64)
		art, err3 := strconv.ParseFloat(parts[3], 64)
		drift, err4 := strconv.ParseFloat(parts[4], 64)
		res, err5 := strconv.ParseFloat(parts[5], 64)
		sessions, err6 := strconv.Atoi(parts[6])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
			continue
		}
		s.Data[parts[0]] = &Memory{
			AvgPace:         pace,
			AvgPause:        pause,
			AvgArticulation: art,
			AvgDrift:        drift,
			AvgRes:          res,
			Sessions:        sessions,
		}
	}

	return s
}

// Update folds one session's final parameters into the device's running
// means
func (s *Store) Update(device string, pace, pause, art, drift, res float64) {
	m, ok := s.Data[device]
	if !ok {
		m = &Memory{}
		s.Data[device] = m
	}
	m.Sessions++
	n := float64(m.Sessions)
	m.AvgPace = (m.AvgPace*(n-1) + pace) / n
	m.AvgPause = (m.AvgPause*(n-1) + pause) / n
	m.AvgArticulation = (m.AvgArticulation*(n-1) + art) / n
	m.AvgDrift = (m.AvgDrift*(n-1) + drift) / n
	m.AvgRes = (m.AvgRes*(n-1) + res) / n
}

// Save rewrites the whole store. Failures are reported and swallowed.
func (s *Store) Save() {
	if s.Path == "" {
		return
	}

	var b strings.Builder
	for key, m := range s.Data {
		fmt.Fprintf(&b, "%s|%.3f|%.1f|%.3f|%.3f|%.3f|%d\n",
			key, m.AvgPace, m.AvgPause, m.AvgArticulation, m.AvgDrift, m.AvgRes, m.Sessions)
	}

	if dir := filepath.Dir(s.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Warn("memory", "failed to create dir %s: %v", dir, err)
			return
		}
	}
	if err := os.WriteFile(s.Path, []byte(b.String()), 0644); err != nil {
		logging.Warn("memory", "failed to write %s: %v", s.Path, err)
	}
}

// SuggestProfile returns the remembered averages for a device, or nil
func (s *Store) SuggestProfile(device string) *Memory {
	m, ok := s.Data[device]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}
