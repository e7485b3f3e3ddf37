// Package config assembles the engine configuration. Precedence is
// defaults, then an optional YAML file, then VOICECORE_* environment
// variables, then command-line flags. Values are never rejected here;
// out-of-domain numbers are clamped by the component that consumes them.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/liminallabs/voicecore/internal/logging"
)

// VizMode selects the per-turn rendering.
type VizMode string

const (
	VizCompact VizMode = "compact"
	VizFull    VizMode = "full"
)

// Config is the full engine configuration.
type Config struct {
	Mode       string `yaml:"mode"` // phone, headset, terminal, auto
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	FrameMs    int    `yaml:"frame_ms"`

	EnableMetrics bool    `yaml:"enable_metrics"`
	VizMode       VizMode `yaml:"viz_mode"`
	Cycles        int     `yaml:"cycles"`

	EnableLogging bool   `yaml:"enable_logging"`
	LogDir        string `yaml:"log_dir"`

	Script     string `yaml:"script"`
	InputsPath string `yaml:"inputs_path"`

	BaselineDrift float64 `yaml:"baseline_drift"`
	BaselineRes   float64 `yaml:"baseline_res"`

	Alarm  bool `yaml:"alarm"`
	Strict bool `yaml:"strict"`

	Guard       bool    `yaml:"guard"`
	GuardDrift  float64 `yaml:"guard_drift"`
	GuardRes    float64 `yaml:"guard_res"`
	GuardFactor float64 `yaml:"guard_factor"`

	Stabilizer  bool    `yaml:"stabilizer"`
	StabWin     int     `yaml:"stab_win"`
	StabAlpha   float64 `yaml:"stab_alpha"`
	StabWarm    float64 `yaml:"stab_warm"`
	StabHot     float64 `yaml:"stab_hot"`
	StabLowRes  float64 `yaml:"stab_low_res"`
	StabCool    int     `yaml:"stab_cool"`
	StabCalm    float64 `yaml:"stab_calm"`

	Sync          bool    `yaml:"sync"`
	SyncLRFast    float64 `yaml:"sync_lr_fast"`
	SyncLRSlow    float64 `yaml:"sync_lr_slow"`
	SyncClampStep float64 `yaml:"sync_clamp_step"`

	Astro         bool   `yaml:"astro"`
	AstroPath     string `yaml:"astro_path"`
	AstroCapacity int    `yaml:"astro_capacity"`

	Emote            bool    `yaml:"emote"`
	EmotePath        string  `yaml:"emote_path"`
	EmoteHalfLifeMin int     `yaml:"emote_half_life_min"`
	EmoteWarm        float64 `yaml:"emote_warm"`

	Memory     bool   `yaml:"memory"`
	DevMemPath string `yaml:"devmem_path"`

	Awareness     bool    `yaml:"awareness"`
	MetaStabAlpha float64 `yaml:"meta_stab_alpha"`
	MetaViz       bool    `yaml:"meta_viz"`

	Compassion    bool `yaml:"compassion"`
	CompassionViz bool `yaml:"compassion_viz"`
}

// Default returns the built-in engine defaults.
func Default() Config {
	return Config{
		Mode:       "phone",
		SampleRate: 16000,
		Channels:   1,
		FrameMs:    20,

		EnableMetrics: true,
		VizMode:       VizCompact,
		Cycles:        5,

		EnableLogging: false,
		LogDir:        "logs",

		BaselineDrift: 0.35,
		BaselineRes:   0.65,

		Alarm:  true,
		Strict: false,

		Guard:       true,
		GuardDrift:  0.40,
		GuardRes:    0.60,
		GuardFactor: 0.2,

		Stabilizer: true,
		StabWin:    5,
		StabAlpha:  0.4,
		StabWarm:   0.32,
		StabHot:    0.42,
		StabLowRes: 0.58,
		StabCool:   3,
		StabCalm:   0.08,

		Sync:          true,
		SyncLRFast:    0.6,
		SyncLRSlow:    0.25,
		SyncClampStep: 0.05,

		Astro:         true,
		AstroPath:     "astro_traces.jsonl",
		AstroCapacity: 64,

		Emote:            true,
		EmotePath:        "emote_seed.jsonl",
		EmoteHalfLifeMin: 180,
		EmoteWarm:        0.02,

		Memory:     true,
		DevMemPath: "device_memory.txt",

		Awareness:     true,
		MetaStabAlpha: 0.3,
		MetaViz:       false,

		Compassion:    true,
		CompassionViz: false,
	}
}

// Load builds the configuration: defaults, optional YAML file, environment,
// then flags. args is os.Args[1:].
func Load(path string, args []string) Config {
	cfg := Default()
	if path != "" {
		cfg.applyFile(path)
	}
	cfg.applyEnv()
	cfg.applyArgs(args)
	return cfg
}

func (c *Config) applyFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("config", "read %s: %v", path, err)
		}
		return
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		logging.Warn("config", "parse %s: %v", path, err)
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("VOICECORE_MODE")); v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v, ok := envInt("VOICECORE_SAMPLE_RATE"); ok {
		c.SampleRate = v
	}
	if v, ok := envInt("VOICECORE_CHANNELS"); ok {
		c.Channels = v
	}
	if v, ok := envInt("VOICECORE_FRAME_MS"); ok {
		c.FrameMs = v
	}
	if v, ok := envBool("VOICECORE_ENABLE_METRICS"); ok {
		c.EnableMetrics = v
	}
	if v := os.Getenv("VOICECORE_VIZ_MODE"); v != "" {
		if mode, ok := parseVizMode(v); ok {
			c.VizMode = mode
		}
	}
	if v, ok := envInt("VOICECORE_CYCLES"); ok && v > 0 {
		c.Cycles = v
	}
	if v, ok := envBool("VOICECORE_LOG"); ok {
		c.EnableLogging = v
	}
	if v := strings.TrimSpace(os.Getenv("VOICECORE_LOG_DIR")); v != "" {
		c.LogDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VOICECORE_ASTRO_PATH")); v != "" {
		c.AstroPath = v
	}
	if v := strings.TrimSpace(os.Getenv("VOICECORE_EMOTE_PATH")); v != "" {
		c.EmotePath = v
	}
	if v := strings.TrimSpace(os.Getenv("VOICECORE_DEVMEM_PATH")); v != "" {
		c.DevMemPath = v
	}
}

// applyArgs walks the argument list the same way for every flag: value flags
// consume the next token, switch flags flip a bool. Unknown tokens are
// ignored so wrappers can pass extra arguments through.
func (c *Config) applyArgs(args []string) {
	next := func(i *int) (string, bool) {
		if *i+1 >= len(args) {
			return "", false
		}
		*i++
		return args[*i], true
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--mode":
			if v, ok := next(&i); ok {
				c.Mode = strings.ToLower(v)
			}
		case "--sample-rate":
			if v, ok := nextInt(next, &i); ok {
				c.SampleRate = v
			}
		case "--channels":
			if v, ok := nextInt(next, &i); ok {
				c.Channels = v
			}
		case "--frame-ms":
			if v, ok := nextInt(next, &i); ok {
				c.FrameMs = v
			}
		case "--no-metrics":
			c.EnableMetrics = false
		case "--viz":
			if v, ok := next(&i); ok {
				if mode, parsed := parseVizMode(v); parsed {
					c.VizMode = mode
				}
			}
		case "--cycles":
			if v, ok := nextInt(next, &i); ok && v > 0 {
				c.Cycles = v
			}
		case "--log":
			c.EnableLogging = true
		case "--log-dir":
			if v, ok := next(&i); ok && strings.TrimSpace(v) != "" {
				c.LogDir = v
			}
		case "--script":
			if v, ok := next(&i); ok {
				c.Script = v
			}
		case "--inputs":
			if v, ok := next(&i); ok && strings.TrimSpace(v) != "" {
				c.InputsPath = v
			}
		case "--baseline-drift":
			if v, ok := nextFloat(next, &i); ok {
				c.BaselineDrift = v
			}
		case "--baseline-res":
			if v, ok := nextFloat(next, &i); ok {
				c.BaselineRes = v
			}
		case "--alarm":
			c.Alarm = true
		case "--no-alarm":
			c.Alarm = false
		case "--strict":
			c.Strict = true
		case "--guard":
			c.Guard = true
		case "--no-guard":
			c.Guard = false
		case "--guard-drift":
			if v, ok := nextFloat(next, &i); ok {
				c.GuardDrift = v
			}
		case "--guard-res":
			if v, ok := nextFloat(next, &i); ok {
				c.GuardRes = v
			}
		case "--guard-factor":
			if v, ok := nextFloat(next, &i); ok {
				c.GuardFactor = v
			}
		case "--stabilizer":
			c.Stabilizer = true
		case "--no-stabilizer":
			c.Stabilizer = false
		case "--stab-win":
			if v, ok := nextInt(next, &i); ok && v > 0 {
				c.StabWin = v
			}
		case "--stab-alpha":
			if v, ok := nextFloat(next, &i); ok {
				c.StabAlpha = v
			}
		case "--stab-warm":
			if v, ok := nextFloat(next, &i); ok {
				c.StabWarm = v
			}
		case "--stab-hot":
			if v, ok := nextFloat(next, &i); ok {
				c.StabHot = v
			}
		case "--stab-lowres":
			if v, ok := nextFloat(next, &i); ok {
				c.StabLowRes = v
			}
		case "--stab-cool":
			if v, ok := nextInt(next, &i); ok && v > 0 {
				c.StabCool = v
			}
		case "--stab-calm":
			if v, ok := nextFloat(next, &i); ok {
				c.StabCalm = v
			}
		case "--sync":
			c.Sync = true
		case "--no-sync":
			c.Sync = false
		case "--astro":
			c.Astro = true
		case "--no-astro":
			c.Astro = false
		case "--astro-path":
			if v, ok := next(&i); ok && strings.TrimSpace(v) != "" {
				c.AstroPath = v
			}
		case "--astro-capacity":
			if v, ok := nextInt(next, &i); ok && v > 0 {
				c.AstroCapacity = v
			}
		case "--emote":
			c.Emote = true
		case "--no-emote":
			c.Emote = false
		case "--emote-path":
			if v, ok := next(&i); ok && strings.TrimSpace(v) != "" {
				c.EmotePath = v
			}
		case "--memory":
			c.Memory = true
		case "--no-memory":
			c.Memory = false
		case "--memory-path":
			if v, ok := next(&i); ok && strings.TrimSpace(v) != "" {
				c.DevMemPath = v
			}
		case "--awareness":
			c.Awareness = true
		case "--no-awareness":
			c.Awareness = false
		case "--meta-viz":
			c.MetaViz = true
		case "--compassion":
			c.Compassion = true
		case "--no-compassion":
			c.Compassion = false
		case "--compassion-viz":
			c.CompassionViz = true
		}
	}
}

func parseVizMode(value string) (VizMode, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "compact":
		return VizCompact, true
	case "full":
		return VizFull, true
	}
	return "", false
}

func envInt(key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func nextInt(next func(*int) (string, bool), i *int) (int, bool) {
	raw, ok := next(i)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nextFloat(next func(*int) (string, bool), i *int) (float64, bool) {
	raw, ok := next(i)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
