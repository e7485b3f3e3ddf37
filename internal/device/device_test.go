package device

import "testing"

func TestDetect_KnownModes(t *testing.T) {
	cases := map[string]Mode{
		"phone":     Phone,
		"Headset":   Headset,
		" terminal": Terminal,
		"unknown":   Phone,
		"":          Phone,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Errorf("Detect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetect_AutoReturnsValidMode(t *testing.T) {
	m := Detect("auto")
	if m != Phone && m != Headset && m != Terminal {
		t.Errorf("auto detection returned invalid mode %v", m)
	}
}

func TestGetProfile(t *testing.T) {
	phone := GetProfile(Phone)
	if phone.PaceFactor != 1.05 || phone.PauseMs != 60 || phone.GainDB != -2.0 {
		t.Errorf("phone profile = %+v", phone)
	}
	headset := GetProfile(Headset)
	if headset.PaceFactor != 1.00 || headset.PauseMs != 40 {
		t.Errorf("headset profile = %+v", headset)
	}
	terminal := GetProfile(Terminal)
	if terminal.PaceFactor != 0.95 || terminal.PauseMs != 80 {
		t.Errorf("terminal profile = %+v", terminal)
	}
}
