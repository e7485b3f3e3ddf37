package metrics

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3.7, 1},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0.5, -0.03, 0.03); got != 0.03 {
		t.Errorf("Clamp(0.5, -0.03, 0.03) = %v, want 0.03", got)
	}
	if got := Clamp(-0.5, -0.03, 0.03); got != -0.03 {
		t.Errorf("Clamp(-0.5, -0.03, 0.03) = %v, want -0.03", got)
	}
	if got := Clamp(0.01, -0.03, 0.03); got != 0.01 {
		t.Errorf("Clamp(0.01, -0.03, 0.03) = %v, want 0.01", got)
	}
}

func TestHash01_Deterministic(t *testing.T) {
	a1, b1 := Hash01("hello liminal")
	a2, b2 := Hash01("hello liminal")
	if a1 != a2 || b1 != b2 {
		t.Error("Hash01 should be deterministic for the same input")
	}
}

func TestHash01_InRange(t *testing.T) {
	inputs := []string{"", "a", "hello liminal", "focus;calm", "日本語テキスト"}
	for _, in := range inputs {
		a, b := Hash01(in)
		if a < 0 || a > 1 || b < 0 || b > 1 {
			t.Errorf("Hash01(%q) = (%v, %v), both must be in [0,1]", in, a, b)
		}
		if math.IsNaN(a) || math.IsNaN(b) {
			t.Errorf("Hash01(%q) produced NaN", in)
		}
	}
}

func TestHash01_DistinctInputsDiffer(t *testing.T) {
	a1, _ := Hash01("topic one")
	a2, _ := Hash01("topic two")
	if a1 == a2 {
		t.Error("different inputs should hash to different values")
	}
}
