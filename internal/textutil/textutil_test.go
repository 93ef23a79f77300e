package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"Big Wave Surfing!": "Big_Wave_Surfing",
		"  spaced  ":        "spaced",
		"///":               "clip",
		"":                  "clip",
		"already_ok":        "already_ok",
	}
	for input, want := range cases {
		if got := SanitizeToken(input); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := map[string]string{
		"/videos/big_wave-surfing.mp4": "Big Wave Surfing",
		"clip.01.final.mov":            "Clip 01 Final",
		"":                             "Untitled Clip",
		"???":                          "Untitled Clip",
	}
	for input, want := range cases {
		if got := DeriveTitle(input); got != want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", input, got, want)
		}
	}
}
