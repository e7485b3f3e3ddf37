package guard

import (
	"strings"
	"testing"
)

func TestCheck_NoneWithinLimits(t *testing.T) {
	a := Check("hello", 0.30, 0.70, DefaultConfig())
	if a.Kind != None {
		t.Errorf("action = %+v, want None", a)
	}
}

func TestCheck_WarnOnDriftOnly(t *testing.T) {
	a := Check("hello", 0.50, 0.70, DefaultConfig())
	if a.Kind != Warn {
		t.Fatalf("action = %+v, want Warn", a)
	}
	if !strings.Contains(a.Text, "0.50") {
		t.Errorf("warning text = %q", a.Text)
	}
}

func TestCheck_RephraseOnDoubleBreach(t *testing.T) {
	a := Check("  Stop!  Now!  ", 0.50, 0.40, DefaultConfig())
	if a.Kind != Rephrased {
		t.Fatalf("action = %+v, want Rephrased", a)
	}
	if !strings.HasSuffix(a.Text, "[recentered]") {
		t.Errorf("rephrased text = %q", a.Text)
	}
	if strings.Contains(a.Text, "!") {
		t.Errorf("rephrased text should soften exclamations: %q", a.Text)
	}
}

func TestCheck_LowResAloneIsNone(t *testing.T) {
	// Resonance collapse without drift breach takes no action
	a := Check("hello", 0.30, 0.40, DefaultConfig())
	if a.Kind != None {
		t.Errorf("action = %+v, want None", a)
	}
}
