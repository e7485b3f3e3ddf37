package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/liminallabs/voicecore/internal/alerts"
	"github.com/liminallabs/voicecore/internal/astro"
	"github.com/liminallabs/voicecore/internal/awareness"
	"github.com/liminallabs/voicecore/internal/compassion"
	"github.com/liminallabs/voicecore/internal/config"
	"github.com/liminallabs/voicecore/internal/device"
	"github.com/liminallabs/voicecore/internal/devmem"
	"github.com/liminallabs/voicecore/internal/dialog"
	"github.com/liminallabs/voicecore/internal/emotive"
	"github.com/liminallabs/voicecore/internal/guard"
	"github.com/liminallabs/voicecore/internal/logging"
	"github.com/liminallabs/voicecore/internal/metrics"
	"github.com/liminallabs/voicecore/internal/prosody"
	"github.com/liminallabs/voicecore/internal/qa"
	"github.com/liminallabs/voicecore/internal/session"
	"github.com/liminallabs/voicecore/internal/stabilizer"
	"github.com/liminallabs/voicecore/internal/syncctl"
	"github.com/liminallabs/voicecore/internal/viz"
	"github.com/liminallabs/voicecore/internal/voiceio"
)

// Absolute pacing clamps. These live in the caller; the controllers emit
// unclamped deltas and the final clamp happens here.
const (
	paceMin    = 0.7
	paceMax    = 1.3
	pauseMinMs = 20
	pauseMaxMs = 250
)

// noState marks runs where the stabilizer is disabled
const noState = stabilizer.State(-1)

func main() {
	// .env is optional; real environment variables win either way
	_ = godotenv.Load()

	cfg := config.Load(os.Getenv("VOICECORE_CONFIG"), os.Args[1:])

	utterances := dialog.LoadInputs(cfg.InputsPath, cfg.Script, cfg.Cycles)
	if len(utterances) > cfg.Cycles {
		cfg.Cycles = len(utterances)
	}
	utterances = dialog.Pad(utterances, cfg.Cycles)

	astroTheme := astro.NormalizeTheme(cfg.Script, utterances)

	mode := device.Detect(cfg.Mode)
	cfg.Mode = strings.ToLower(mode.String())
	prof := device.GetProfile(mode)

	var astroStore *astro.Store
	if cfg.Astro {
		astroStore = astro.Load(cfg.AstroPath, cfg.AstroCapacity)
	}
	var astroStats astro.SessionStats

	// Topic memory can pre-bias the run when the theme has history
	var astroSeedRes, astroSeedDrift float64
	if cfg.Sync && astroStore != nil && astroTheme != "" {
		if bias := astroStore.SuggestSync(astroTheme); bias != nil {
			visitsFactor := math.Min(float64(bias.Visits), 12) / 12.0
			weight := 0.4 + 0.6*((bias.Stability+visitsFactor)*0.5)
			astroSeedRes = metrics.Clamp(bias.ResBias*weight, -0.05, 0.05)
			astroSeedDrift = metrics.Clamp(-bias.DriftBias*weight, 0, 0.05)
		}
	}

	deviceKey := mode.String()
	var memStore *devmem.Store
	if cfg.Memory {
		memStore = devmem.Load(cfg.DevMemPath)
	}
	basePace := prof.PaceFactor
	basePause := float64(prof.PauseMs)
	var deviceSeedPace float64
	var deviceSeedPause int64
	if memStore != nil {
		if m := memStore.SuggestProfile(deviceKey); m != nil {
			fmt.Printf("[memory] loaded avg_pace=%.2f pause=%.1f art=%.2f\n",
				m.AvgPace, m.AvgPause, m.AvgArticulation)
			prof.PaceFactor = metrics.Clamp(prof.PaceFactor+m.AvgPace*0.1, paceMin, paceMax)
			deviceSeedPace = metrics.Clamp(m.AvgPace-basePace, -0.2, 0.2)
			deviceSeedPause = metrics.ClampInt(int64(math.Round(m.AvgPause-basePause)), -40, 60)
		}
	}

	var emoteSeed *emotive.Seed
	var emoteSeedDisplay string
	var emoteSeedRes, emoteSeedDrift float64
	if cfg.Emote {
		if seed := emotive.LoadLatest(cfg.EmotePath); seed != nil {
			dec := emotive.Decay(seed, time.Now().Unix(), cfg.EmoteHalfLifeMin)
			emotive.ApplyBootBias(&dec.EMARes, cfg.EmoteWarm)
			fmt.Printf("[emote] seed loaded tone=%s ema_drift=%.2f ema_res=%.2f wpm=%.0f\n",
				dec.Tone, dec.EMADrift, dec.EMARes, dec.WPM)
			emoteSeedDisplay = fmt.Sprintf("tone=%s ema_d=%.2f ema_r=%.2f wpm=%.0f",
				dec.Tone, dec.EMADrift, dec.EMARes, dec.WPM)
			emoteSeedRes = metrics.Clamp(dec.EMARes-cfg.BaselineRes, 0, 0.05)
			emoteSeedDrift = metrics.Clamp(cfg.BaselineDrift-dec.EMADrift, 0, 0.05)
			emoteSeed = dec
		}
	}

	var sess *session.Session
	if cfg.EnableLogging {
		sess = session.Start(cfg.Cycles, cfg.LogDir)
		if err := sess.Open(); err != nil {
			logging.Warn("log", "failed to open session log: %v", err)
			sess = nil
		} else {
			logging.Info("log", "session log %s", sess.Path())
		}
	}

	syncBase := syncctl.Baselines{Drift: cfg.BaselineDrift, Res: cfg.BaselineRes}
	syncCfg := syncctl.Config{
		LRFast:    cfg.SyncLRFast,
		LRSlow:    cfg.SyncLRSlow,
		ClampStep: cfg.SyncClampStep,
	}
	var syncState syncctl.State
	if cfg.Sync {
		seeds := syncctl.MergeSeeds(emoteSeedRes, emoteSeedDrift,
			deviceSeedPace, deviceSeedPause, astroSeedRes, astroSeedDrift)
		syncState.WarmStart(seeds, syncBase)
	}

	driftHistory := make([]float64, 0, cfg.Cycles)
	resHistory := make([]float64, 0, cfg.Cycles)
	var lastSnapshot *session.Snapshot
	var alertStats *alerts.Stats
	if cfg.Alarm {
		alertStats = &alerts.Stats{}
	}

	guardCfg := guard.Config{
		DriftLimit:     cfg.GuardDrift,
		ResLimit:       cfg.GuardRes,
		RephraseFactor: cfg.GuardFactor,
	}

	var stab *stabilizer.Stabilizer
	if cfg.Stabilizer {
		stab = stabilizer.New(stabilizer.Config{
			Window:    cfg.StabWin,
			EMAAlpha:  cfg.StabAlpha,
			WarmDrift: cfg.StabWarm,
			HotDrift:  cfg.StabHot,
			LowRes:    cfg.StabLowRes,
			CoolSteps: cfg.StabCool,
			CalmBoost: cfg.StabCalm,
		})
	}

	var meta *awareness.MetaCognition
	var metaStab *awareness.MetaStabilizer
	if cfg.Awareness {
		meta = awareness.NewMetaCognition()
		metaStab = awareness.NewMetaStabilizer(cfg.MetaStabAlpha)
	}

	var comp *compassion.Metrics
	if cfg.Compassion {
		comp = compassion.New()
	}

	var lastArticulation, lastDrift, lastRes, lastWPM float64
	var lastTone prosody.ToneTag
	haveTurns := false
	seedBiasApplied := false

	// Yesterday's temperament warms up today's EMA before the first push
	if stab != nil && emoteSeed != nil {
		stab.Push(emoteSeed.EMADrift, emoteSeed.EMARes)
	}

	for idx, utterance := range utterances {
		vm := metrics.Start()

		asrStart := time.Now()
		text := voiceio.TranscribeLike(cfg, prof, utterance)
		vm.ASRMs = time.Since(asrStart).Milliseconds()
		logging.Debug("dialog", "turn %d input: %s", idx, logging.Truncate(text, 80))

		pros := prosody.Analyze(text, prof.PaceFactor, prof.PauseMs)
		drift, res := qa.AnalyzePrompt(text)
		drift, res = qa.ApplyProsodyBias(drift, res, pros.Tone)
		drift = metrics.Clamp01(drift)
		res = metrics.Clamp01(res)
		measuredDrift := drift
		measuredRes := res

		var astroKey string
		var astroAdvice *astro.Advice
		var recallTS int64
		if cfg.Astro {
			astroKey = astro.TopicKey(text, pros.Tone.String())
		}
		if astroStore != nil && astroKey != "" {
			now := time.Now().Unix()
			if adv := astroStore.Recall(astroKey, now); adv != nil {
				// Early turns in yesterday's tone get an extra warm recall
				if emoteSeed != nil && idx < 2 && strings.EqualFold(emoteSeed.Tone, pros.Tone.String()) {
					extra := 0.02 + math.Min(math.Abs(adv.ResBias), 0.06)*0.5
					adv.ResBias += extra
					adv.DriftBias -= extra * 0.6
				}
				drift = metrics.Clamp01(drift + adv.DriftBias)
				res = metrics.Clamp01(res + adv.ResBias)
				astroStats.Hits++
				astroStats.BoostRes += adv.ResBias
				astroStats.BiasDrift += adv.DriftBias
				recallTS = now
				astroAdvice = adv
			}
		}

		emoFlag := pros.Tone == prosody.Energetic &&
			(measuredDrift > cfg.BaselineDrift || measuredRes > 0.75)

		articulation := pros.Articulation
		effectivePace := prof.PaceFactor
		effectivePause := prof.PauseMs
		var stabLabel *string
		currentState := noState

		if !seedBiasApplied {
			if emoteSeed != nil {
				paceBias := metrics.Clamp(emoteSeed.WPM/160.0, 0.8, 1.2)
				effectivePace = metrics.Clamp(effectivePace*paceBias, paceMin, paceMax)
			}
			if cfg.Sync {
				effectivePace = metrics.Clamp(effectivePace+syncState.Seeds.PaceBias, paceMin, paceMax)
				effectivePause = metrics.ClampInt(effectivePause+syncState.Seeds.PauseBiasMs, pauseMinMs, pauseMaxMs)
				res = metrics.Clamp01(res + syncState.Seeds.ResWarm)
				drift = metrics.Clamp01(drift - syncState.Seeds.DriftSoft)
			}
			seedBiasApplied = true
		}

		if stab != nil {
			stab.Push(drift, res)
			adv := stab.Advice()
			effectivePace = metrics.Clamp(prof.PaceFactor+adv.PaceDelta, paceMin, paceMax)
			effectivePause = metrics.ClampInt(prof.PauseMs+adv.PauseDeltaMs, pauseMinMs, pauseMaxMs)
			articulation = prosody.ApplyArticulationHint(pros.Articulation, adv.ArticulationHint)
			fmt.Println(stabilizer.FormatStatus(stab.State, stab.EMADrift, stab.EMARes))
			if cfg.VizMode == config.VizCompact {
				viz.CompactStabilizer(stab.State, stab.EMADrift, stab.EMARes)
			}
			label := stab.State.String()
			stabLabel = &label
			currentState = stab.State
		}

		if astroAdvice != nil {
			if currentState == stabilizer.Overheat {
				astroAdvice.PaceDelta -= 0.02
				astroAdvice.PauseDeltaMs += 15
			}
			effectivePace = metrics.Clamp(effectivePace+astroAdvice.PaceDelta, paceMin, paceMax)
			effectivePause = metrics.ClampInt(effectivePause+astroAdvice.PauseDeltaMs, pauseMinMs, pauseMaxMs)
		}

		var syncDelta *session.SyncDelta
		if cfg.Sync {
			d := syncState.Step(drift, res, currentState, syncCfg)
			effectivePace += d.PaceDelta
			effectivePause += d.PauseDeltaMs
			res = metrics.Clamp01(res + d.ResBoost)
			drift = metrics.Clamp01(drift - d.DriftRelief)
			syncDelta = &session.SyncDelta{
				PaceDelta:    d.PaceDelta,
				PauseDeltaMs: d.PauseDeltaMs,
				ResBoost:     d.ResBoost,
				DriftRelief:  d.DriftRelief,
			}
		}

		if meta != nil {
			syncCorrection := 0.0
			if syncDelta != nil {
				syncCorrection = math.Abs(syncDelta.PaceDelta) + float64(syncDelta.PauseDeltaMs)/100.0
			}
			meta.Observe(measuredDrift, measuredRes, currentState, syncCorrection)
			metaStab.Update(meta)
			if cfg.MetaViz {
				fmt.Printf("[meta] %s\n", meta.SelfAssess())
				if meta.ShouldExpressDoubt() {
					fmt.Println("[meta] system is uncertain about measurements")
				}
			}
		}

		if comp != nil {
			repeatedTheme := false
			if astroStore != nil && astroKey != "" {
				repeatedTheme = astroStore.HasTrace(astroKey)
			}
			comp.DetectSuffering(measuredDrift, measuredRes, pros.Tone, pros.WPM, currentState, repeatedTheme)

			var paceDelta, resBoost float64
			var pauseDelta int64
			if syncDelta != nil {
				paceDelta = syncDelta.PaceDelta
				pauseDelta = syncDelta.PauseDeltaMs
				resBoost = syncDelta.ResBoost
			}
			// Guard runs after this point, so rephrasing counts toward the
			// next cycle's kindness, not this one's
			comp.CalculateKindness(false, paceDelta, pauseDelta, resBoost)
			comp.UpdateCompassionLevel()

			if comp.ShouldActivate() {
				adj := compassion.AdjustmentsFor(comp)
				res = metrics.Clamp01(res + adj.ResonanceBoost)
				drift = metrics.Clamp01(drift - adj.DriftReduction)
				effectivePace = metrics.Clamp(effectivePace+adj.PaceAdjustment, paceMin, paceMax)
				effectivePause = metrics.ClampInt(effectivePause+adj.PauseAdjustMs, pauseMinMs, pauseMaxMs)
			}

			if cfg.CompassionViz {
				fmt.Printf("[compassion] %s\n", comp.StatusMessage())
				if comp.ShouldOfferSupport() {
					fmt.Println("[compassion] offering support to user")
				}
			}
		}

		effectivePace = metrics.Clamp(effectivePace, paceMin, paceMax)
		effectivePause = metrics.ClampInt(effectivePause, pauseMinMs, pauseMaxMs)

		var guardFlag *string
		if cfg.Guard {
			switch action := guard.Check(text, drift, res, guardCfg); action.Kind {
			case guard.Warn:
				fmt.Println(action.Text)
				label := "warn"
				guardFlag = &label
			case guard.Rephrased:
				fmt.Printf("[voice-core] %s\n", action.Text)
				if stab != nil {
					voiceio.SynthesizeWith(cfg, prof, effectivePace, effectivePause, action.Text)
				} else {
					voiceio.Synthesize(cfg, prof, action.Text)
				}
				label := "rephrased"
				guardFlag = &label
			}
		}

		ttsStart := time.Now()
		reply := fmt.Sprintf("Semantic Drift: %.2f, Resonance: %.2f", drift, res)
		if stab != nil {
			voiceio.SynthesizeWith(cfg, prof, effectivePace, effectivePause, reply)
		} else {
			voiceio.Synthesize(cfg, prof, reply)
		}
		vm.TTSMs = time.Since(ttsStart).Milliseconds()

		vm.Finish()
		if cfg.EnableMetrics {
			fmt.Printf("[metrics] %s\n", vm)
		}

		driftHistory = append(driftHistory, drift)
		resHistory = append(resHistory, res)

		lastTurn := idx+1 == len(utterances)
		snapshot := session.Snapshot{
			TS:           session.NowRFC3339(),
			Device:       cfg.Mode,
			Drift:        drift,
			Resonance:    res,
			WPM:          pros.WPM,
			Articulation: articulation,
			Tone:         pros.Tone.String(),
			ASRMs:        vm.ASRMs,
			TTSMs:        vm.TTSMs,
			TotalMs:      vm.TotalMs,
			Idx:          idx,
			Utterance:    text,
			Guard:        guardFlag,
			State:        stabLabel,
		}
		if lastTurn {
			tone := pros.Tone.String()
			snapshot.EmoteState = &tone
			snapshot.Sync = syncDelta
		}
		if meta != nil {
			snapshot.MetaSelfDrift = ptr(meta.SelfDrift)
			snapshot.MetaSelfResonance = ptr(meta.SelfResonance)
			snapshot.MetaConfidence = ptr(meta.Confidence)
			snapshot.MetaClarity = ptr(meta.Clarity)
			snapshot.MetaDoubt = ptr(meta.Doubt)
		}
		if comp != nil {
			snapshot.CompassionSuffering = ptr(comp.UserSuffering)
			compType := comp.SufferingType.String()
			snapshot.CompassionType = &compType
			snapshot.CompassionKindness = ptr(comp.ResponseKindness)
			snapshot.CompassionHealing = ptr(comp.HealingIntent)
			snapshot.CompassionLevel = ptr(comp.CompassionLevel)
		}

		lastArticulation = articulation
		lastDrift = drift
		lastRes = res
		lastTone = pros.Tone
		lastWPM = pros.WPM
		haveTurns = true

		if sess != nil {
			if err := sess.Write(&snapshot); err != nil {
				logging.Warn("log", "failed to write snapshot: %v", err)
			}
		}

		if astroStore != nil && astroKey != "" {
			ts := recallTS
			if ts == 0 {
				ts = time.Now().Unix()
			}
			astroStore.Consolidate(astroKey, measuredDrift, measuredRes, emoFlag, ts)
		}

		lastSnapshot = &snapshot

		if alertStats != nil {
			alertStats.Update(drift, res, cfg.BaselineDrift, cfg.BaselineRes)
		}
	}

	var astroDeltaDrift, astroDeltaRes float64
	if cfg.Sync {
		astroDeltaDrift, astroDeltaRes = syncState.ToSlowIncrements(syncCfg)
	}
	if cfg.Sync && astroStore != nil && astroTheme != "" {
		astroStore.FoldSyncDelta(astroTheme, astroDeltaDrift, astroDeltaRes, time.Now().Unix())
		astroStats.BiasDrift += astroDeltaDrift
		astroStats.BoostRes += astroDeltaRes
	}

	fmt.Printf("[viz] resonance  %s\n", viz.Sparkline(resHistory))
	fmt.Printf("[viz] drift      %s\n", viz.Sparkline(driftHistory))

	if cfg.Astro {
		fmt.Printf("[astro] hits=%d boost_res=%.3f bias_drift=%.3f\n",
			astroStats.Hits, astroStats.BoostRes, astroStats.BiasDrift)
	}

	if cfg.VizMode == config.VizFull && lastSnapshot != nil {
		in := viz.TableInput{
			Drift:        lastSnapshot.Drift,
			Resonance:    lastSnapshot.Resonance,
			WPM:          lastSnapshot.WPM,
			Articulation: lastSnapshot.Articulation,
			Tone:         lastSnapshot.Tone,
			ASRMs:        lastSnapshot.ASRMs,
			TTSMs:        lastSnapshot.TTSMs,
			TotalMs:      lastSnapshot.TotalMs,
			EmoteSeed:    emoteSeedDisplay,
		}
		if stab != nil {
			in.StabState = fmt.Sprintf("%s (EMA d=%.2f r=%.2f)", stab.State, stab.EMADrift, stab.EMARes)
		}
		if meta != nil {
			in.MetaLine = meta.SelfAssess()
			in.MetaDetail = fmt.Sprintf("%.2f / %.2f", meta.Confidence, meta.Clarity)
			in.MetaDoubtful = meta.ShouldExpressDoubt()
		}
		viz.Table(in)
	}

	if cfg.Emote && haveTurns {
		emaDrift, emaRes := lastDrift, lastRes
		if stab != nil {
			emaDrift, emaRes = stab.EMADrift, stab.EMARes
		}
		seed := emotive.Seed{
			EMADrift: emaDrift,
			EMARes:   emaRes,
			Tone:     lastTone.String(),
			WPM:      lastWPM,
			TSUnix:   time.Now().Unix(),
		}
		if err := emotive.SaveAppend(cfg.EmotePath, &seed); err != nil {
			logging.Warn("emote", "failed to save seed: %v", err)
		} else {
			fmt.Printf("[emote] saved tone=%s ema_drift=%.2f ema_res=%.2f wpm=%.0f\n",
				seed.Tone, seed.EMADrift, seed.EMARes, seed.WPM)
		}
	}

	if memStore != nil && haveTurns {
		memStore.Update(deviceKey, prof.PaceFactor, float64(prof.PauseMs),
			lastArticulation, lastDrift, lastRes)
		memStore.Save()
		fmt.Printf("[memory] saved updated profile for %s\n", deviceKey)
	}

	strictExit := false
	if alertStats != nil {
		for _, line := range alertStats.SummaryLines(cfg.BaselineDrift, cfg.BaselineRes) {
			fmt.Println(line)
		}
		strictExit = cfg.Strict && alertStats.Breached()
	}

	if sess != nil {
		sess.Close()
	}

	if strictExit {
		os.Exit(2)
	}
}

func ptr(v float64) *float64 {
	return &v
}
