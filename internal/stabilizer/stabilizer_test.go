package stabilizer

import "testing"

func testConfig() Config {
	return Config{
		Window:    5,
		EMAAlpha:  0.4,
		WarmDrift: 0.32,
		HotDrift:  0.42,
		LowRes:    0.58,
		CoolSteps: 3,
		CalmBoost: 0.08,
	}
}

func TestNew_ClampsConfig(t *testing.T) {
	s := New(Config{
		Window:    0,
		EMAAlpha:  2.0,
		WarmDrift: -1.0,
		HotDrift:  5.0,
		LowRes:    -0.2,
		CoolSteps: 0,
		CalmBoost: 0.9,
	})

	if s.Cfg.Window != 1 {
		t.Errorf("Window = %d, want 1", s.Cfg.Window)
	}
	if s.Cfg.EMAAlpha != 1.0 {
		t.Errorf("EMAAlpha = %v, want 1.0", s.Cfg.EMAAlpha)
	}
	if s.Cfg.WarmDrift != 0.0 {
		t.Errorf("WarmDrift = %v, want 0.0", s.Cfg.WarmDrift)
	}
	if s.Cfg.HotDrift != 1.0 {
		t.Errorf("HotDrift = %v, want 1.0", s.Cfg.HotDrift)
	}
	if s.Cfg.CoolSteps != 1 {
		t.Errorf("CoolSteps = %d, want 1", s.Cfg.CoolSteps)
	}
	if s.Cfg.CalmBoost != 0.2 {
		t.Errorf("CalmBoost = %v, want 0.2", s.Cfg.CalmBoost)
	}
}

func TestPush_EMAStaysBounded(t *testing.T) {
	s := New(testConfig())

	// Feed extreme out-of-range values; EMA must stay in [0,1]
	inputs := [][2]float64{
		{-10, 50}, {100, -3}, {0.5, 0.5}, {2, 2}, {-1, -1},
	}
	for _, in := range inputs {
		s.Push(in[0], in[1])
		if s.EMADrift < 0 || s.EMADrift > 1 {
			t.Fatalf("EMADrift = %v out of [0,1]", s.EMADrift)
		}
		if s.EMARes < 0 || s.EMARes > 1 {
			t.Fatalf("EMARes = %v out of [0,1]", s.EMARes)
		}
	}
}

func TestPush_FirstSampleSeedsEMA(t *testing.T) {
	s := New(testConfig())
	s.Push(0.2, 0.8)
	if s.EMADrift != 0.2 || s.EMARes != 0.8 {
		t.Errorf("first push should seed EMA directly, got (%v, %v)", s.EMADrift, s.EMARes)
	}

	// Second push follows the recurrence: 0.4*x + 0.6*ema
	s.Push(0.4, 0.6)
	wantDrift := 0.4*0.4 + 0.6*0.2
	wantRes := 0.4*0.6 + 0.6*0.8
	if diff := s.EMADrift - wantDrift; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("EMADrift = %v, want %v", s.EMADrift, wantDrift)
	}
	if diff := s.EMARes - wantRes; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("EMARes = %v, want %v", s.EMARes, wantRes)
	}
}

func TestPush_EscalatesThroughWarming(t *testing.T) {
	s := New(testConfig())

	// Strictly increasing drift passes through Warming before Overheat,
	// never skipping it
	seen := []State{}
	for drift := 0.10; drift <= 0.60; drift += 0.05 {
		s.Push(drift, 0.50)
		if len(seen) == 0 || seen[len(seen)-1] != s.State {
			seen = append(seen, s.State)
		}
	}

	want := []State{Normal, Warming, Overheat}
	if len(seen) != len(want) {
		t.Fatalf("state sequence = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("state sequence = %v, want %v", seen, want)
		}
	}
}

func TestPush_CooldownRequiresCoolSteps(t *testing.T) {
	s := New(testConfig())

	// Drive into Overheat
	s.Push(0.50, 0.40)
	if s.State != Overheat {
		t.Fatalf("state = %v, want Overheat", s.State)
	}

	// With cool_steps=3, the first calm push enters Cooldown and the next
	// two stay there: the exit check needs cool_steps pushes inside the
	// Cooldown state itself
	for i := 1; i <= 3; i++ {
		s.Push(0.10, 0.90)
		if s.State != Cooldown {
			t.Fatalf("after %d calm pushes state = %v, want Cooldown", i, s.State)
		}
	}

	// The fourth transitions to Normal
	s.Push(0.10, 0.90)
	if s.State != Normal {
		t.Fatalf("after 4 calm pushes state = %v, want Normal", s.State)
	}
}

func TestPush_StepCounterSaturates(t *testing.T) {
	s := New(testConfig())
	for i := 0; i < 50; i++ {
		s.Push(0.10, 0.90)
	}
	if s.StepsInState > 2*s.Cfg.CoolSteps {
		t.Errorf("StepsInState = %d, must saturate at %d", s.StepsInState, 2*s.Cfg.CoolSteps)
	}
}

func TestAdvice_PerState(t *testing.T) {
	s := New(testConfig())

	if a := s.Advice(); a != (Advice{}) {
		t.Errorf("Normal advice = %+v, want zero", a)
	}

	s.State = Warming
	if a := s.Advice(); a.PaceDelta != -0.03 || a.PauseDeltaMs != 10 || a.ArticulationHint != 0.02 {
		t.Errorf("Warming advice = %+v", a)
	}

	s.State = Overheat
	a := s.Advice()
	if a.PaceDelta >= -0.07 {
		t.Errorf("Overheat pace delta = %v, want < -0.07 (calm boost applied)", a.PaceDelta)
	}
	if a.PauseDeltaMs != 38 { // 30 + round(0.08*100)
		t.Errorf("Overheat pause delta = %d, want 38", a.PauseDeltaMs)
	}

	s.State = Cooldown
	if a := s.Advice(); a.PaceDelta != -0.04 || a.PauseDeltaMs != 20 || a.ArticulationHint != 0.03 {
		t.Errorf("Cooldown advice = %+v", a)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := New(testConfig())

	s.Push(0.20, 0.80)
	if s.State != Normal {
		t.Fatalf("turn 1 state = %v, want Normal", s.State)
	}
	s.Push(0.34, 0.70)
	if s.State != Warming {
		t.Fatalf("turn 2 state = %v, want Warming", s.State)
	}
	s.Push(0.45, 0.55)
	if s.State != Overheat {
		t.Fatalf("turn 3 state = %v, want Overheat", s.State)
	}
	if a := s.Advice(); a.PaceDelta >= -0.07 {
		t.Errorf("Overheat pace delta = %v, want < -0.07", a.PaceDelta)
	}
}

func TestFormatStatus(t *testing.T) {
	got := FormatStatus(Warming, 0.341, 0.672)
	want := "[stabilizer] state=Warming ema_drift=0.34 ema_res=0.67"
	if got != want {
		t.Errorf("FormatStatus = %q, want %q", got, want)
	}
}
