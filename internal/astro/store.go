// Package astro is the topic-keyed persistent memory store. It keeps a
// capacity-bounded LRU cache of per-topic traces backed by an append-only
// JSONL log. The log is never compacted in-process; replay on load keeps the
// most recent record per key, in file order.
package astro

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/liminallabs/voicecore/internal/logging"
	"github.com/liminallabs/voicecore/internal/metrics"
)

const (
	emaAlpha      = 0.22 // blend factor for EMA updates after the first visit
	decayPerDay   = 0.03 // stability lost per elapsed day since last seen
	maxDecayDays  = 30.0 // decay horizon cap
	minStability  = 0.2  // below this a trace yields no advice
	visitRampCap  = 12.0 // visit-count ramp saturates here
	emoBonus      = 0.12 // flat intensity bonus for emotionally tagged traces
	biasLimit     = 0.2  // sync-bias clamp, ±
	boostBase     = 0.06
	boostNearEMA  = 0.01 // extra when new resonance lands near the EMA
	boostEmotion  = 0.05
	nearEMAWindow = 0.05
)

// fixed6 is a float64 persisted with six decimal places
type fixed6 float64

func (f fixed6) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', 6, 64)), nil
}

func (f *fixed6) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = fixed6(v)
	return nil
}

// Trace is the persisted per-topic memory unit
type Trace struct {
	Key       string `json:"key"`
	EMADrift  fixed6 `json:"ema_drift"`
	EMARes    fixed6 `json:"ema_res"`
	Stability fixed6 `json:"stability"`
	Visits    int    `json:"visits"`
	LastTS    int64  `json:"last_ts"`
	EmoTag    bool   `json:"emo_tag"`

	// Long-horizon sync bias sub-record, fed by end-of-run fold
	SyncBiasDrift fixed6 `json:"sync_bias_drift"`
	SyncBiasRes   fixed6 `json:"sync_bias_res"`
	SyncStability fixed6 `json:"sync_stability"`
	SyncVisits    int    `json:"sync_visits"`
}

// Advice is the recall output applied by the caller under device clamps
type Advice struct {
	DriftBias    float64
	ResBias      float64
	PaceDelta    float64
	PauseDeltaMs int64
}

// SyncBias is the long-horizon suggestion for a topic
type SyncBias struct {
	DriftBias float64
	ResBias   float64
	Stability float64
	Visits    int
}

// SessionStats aggregates recall activity over one run
type SessionStats struct {
	Hits      int
	BoostRes  float64
	BiasDrift float64
}

// Store is a bounded LRU cache of traces plus the durable log path. Not safe
// for concurrent use; the engine is single-threaded by design.
type Store struct {
	path     string
	capacity int
	cache    map[string]*Trace
	order    []string // most-recent-first; always 1:1 with cache keys
}

// Load replays the append-only log at path into a store with the given
// capacity (floored at 1). Each valid line runs the same insert/promote/evict
// sequence as a live write, so the last line for a key wins and overflowed
// keys are evicted in replay order. Malformed lines are skipped silently.
func Load(path string, capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	s := &Store{
		path:     path,
		capacity: capacity,
		cache:    make(map[string]*Trace),
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("astro", "failed to open %s: %v", path, err)
		}
		return s
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var tr Trace
		if err := json.Unmarshal(line, &tr); err != nil {
			continue
		}
		if tr.Key == "" {
			continue
		}
		tr.clamp()
		s.touch(tr.Key, &tr)
	}
	if err := scanner.Err(); err != nil {
		logging.Warn("astro", "failed reading %s: %v", path, err)
	}

	return s
}

// Len returns the number of cached traces
func (s *Store) Len() int {
	return len(s.cache)
}

// HasTrace reports whether a topic is currently cached, without promoting it
func (s *Store) HasTrace(key string) bool {
	_, ok := s.cache[key]
	return ok
}

// Recall decays a topic's stability by elapsed time, then returns pacing
// advice if the trace is still strong enough. A hit refreshes the last-seen
// timestamp and promotes the key to most-recently-used. A miss leaves the
// decayed state in place, so a later recall at the same instant decays no
// further but a later one does.
func (s *Store) Recall(key string, now int64) *Advice {
	tr, ok := s.cache[key]
	if !ok {
		return nil
	}

	elapsedDays := float64(now-tr.LastTS) / 86400.0
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	if elapsedDays > maxDecayDays {
		elapsedDays = maxDecayDays
	}
	tr.Stability = fixed6(math.Max(float64(tr.Stability)-elapsedDays*decayPerDay, 0))
	if float64(tr.Stability) < minStability {
		tr.EmoTag = false
		return nil
	}

	visitRamp := math.Min(float64(tr.Visits), visitRampCap) / visitRampCap
	intensity := 0.7*float64(tr.Stability) + 0.2*visitRamp + 0.1*float64(tr.EMARes)
	if tr.EmoTag {
		intensity += emoBonus
	}
	intensity = metrics.Clamp01(intensity)

	tr.LastTS = now
	s.promote(key)

	return &Advice{
		DriftBias:    -0.02 - 0.04*intensity,
		ResBias:      0.02 + 0.04*intensity,
		PaceDelta:    -0.01 - 0.03*intensity,
		PauseDeltaMs: int64(math.Round(10 + 30*intensity)),
	}
}

// Consolidate folds one turn's measured signals into the topic's trace,
// creating it on first sight, then persists the updated record.
func (s *Store) Consolidate(key string, drift, res float64, emoTag bool, now int64) {
	tr, ok := s.cache[key]
	if !ok {
		tr = &Trace{Key: key}
	}

	tr.Visits++
	if tr.Visits == 1 {
		tr.EMADrift = fixed6(drift)
		tr.EMARes = fixed6(res)
	} else {
		tr.EMADrift = fixed6(emaAlpha*drift + (1-emaAlpha)*float64(tr.EMADrift))
		tr.EMARes = fixed6(emaAlpha*res + (1-emaAlpha)*float64(tr.EMARes))
	}
	tr.EMADrift = fixed6(metrics.Clamp01(float64(tr.EMADrift)))
	tr.EMARes = fixed6(metrics.Clamp01(float64(tr.EMARes)))

	boost := boostBase
	if math.Abs(res-float64(tr.EMARes)) <= nearEMAWindow {
		boost += boostNearEMA
	}
	if emoTag {
		boost += boostEmotion
		tr.EmoTag = true
	}
	tr.Stability = fixed6(metrics.Clamp01(float64(tr.Stability) + boost))
	if !emoTag && float64(tr.Stability) < minStability {
		tr.EmoTag = false
	}
	tr.LastTS = now

	s.touch(key, tr)
	s.append(tr)
}

// FoldSyncDelta accumulates a session's slow increments into the topic's
// long-horizon sync bias. Exact double zeros are a no-op: no visit counted,
// nothing written.
func (s *Store) FoldSyncDelta(key string, driftDelta, resDelta float64, now int64) {
	if driftDelta == 0 && resDelta == 0 {
		return
	}

	tr, ok := s.cache[key]
	if !ok {
		tr = &Trace{Key: key}
	}

	tr.SyncVisits++
	tr.SyncBiasDrift = fixed6(clampBias(float64(tr.SyncBiasDrift) + driftDelta))
	tr.SyncBiasRes = fixed6(clampBias(float64(tr.SyncBiasRes) + resDelta))

	score := metrics.Clamp01(1 - 0.5*(math.Abs(driftDelta)+math.Abs(resDelta)))
	if tr.SyncVisits == 1 {
		tr.SyncStability = fixed6(score)
	} else {
		n := float64(tr.SyncVisits)
		tr.SyncStability = fixed6((float64(tr.SyncStability)*(n-1) + score) / n)
	}
	tr.SyncStability = fixed6(metrics.Clamp01(float64(tr.SyncStability)))
	tr.LastTS = now

	s.touch(key, tr)
	s.append(tr)
}

// SuggestSync returns the long-horizon bias for a topic, or nil if the topic
// has never been folded. Read-only; no LRU promotion.
func (s *Store) SuggestSync(theme string) *SyncBias {
	tr, ok := s.cache[theme]
	if !ok || tr.SyncVisits == 0 {
		return nil
	}
	return &SyncBias{
		DriftBias: clampBias(float64(tr.SyncBiasDrift)),
		ResBias:   clampBias(float64(tr.SyncBiasRes)),
		Stability: metrics.Clamp01(float64(tr.SyncStability)),
		Visits:    tr.SyncVisits,
	}
}

// touch inserts or replaces a trace, promotes it, and evicts the least
// recently touched key if the cache overflows. Cache-only; the durable log
// keeps every appended record.
func (s *Store) touch(key string, tr *Trace) {
	_, existed := s.cache[key]
	s.cache[key] = tr
	if existed {
		s.promote(key)
		return
	}

	s.order = append([]string{key}, s.order...)
	if len(s.cache) > s.capacity {
		victim := s.order[len(s.order)-1]
		s.order = s.order[:len(s.order)-1]
		delete(s.cache, victim)
		logging.Debug("astro", "evicted %s (capacity %d)", victim, s.capacity)
	}
}

// promote moves key to the front of the recency order
func (s *Store) promote(key string) {
	for i, k := range s.order {
		if k == key {
			copy(s.order[1:i+1], s.order[:i])
			s.order[0] = key
			return
		}
	}
	s.order = append([]string{key}, s.order...)
}

// append writes one record to the durable log. Failures are reported and
// swallowed; the in-memory state stays authoritative for the rest of the run.
func (s *Store) append(tr *Trace) {
	if s.path == "" {
		return
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Warn("astro", "failed to create dir %s: %v", dir, err)
			return
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logging.Warn("astro", "failed to open %s: %v", s.path, err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(tr)
	if err != nil {
		logging.Warn("astro", "failed to encode trace %s: %v", tr.Key, err)
		return
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		logging.Warn("astro", "failed to write %s: %v", s.path, err)
	}
}

func (t *Trace) clamp() {
	t.EMADrift = fixed6(metrics.Clamp01(float64(t.EMADrift)))
	t.EMARes = fixed6(metrics.Clamp01(float64(t.EMARes)))
	t.Stability = fixed6(metrics.Clamp01(float64(t.Stability)))
	t.SyncBiasDrift = fixed6(clampBias(float64(t.SyncBiasDrift)))
	t.SyncBiasRes = fixed6(clampBias(float64(t.SyncBiasRes)))
	t.SyncStability = fixed6(metrics.Clamp01(float64(t.SyncStability)))
}

func clampBias(v float64) float64 {
	return metrics.Clamp(v, -biasLimit, biasLimit)
}
