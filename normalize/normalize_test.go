package normalize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		lang string
		want string
	}{
		{"lowercase", "Primary Endpoint", "en", "primary endpoint"},
		{"whitespace collapse", "  Day \t 1\n\nvisit ", "en", "day 1 visit"},
		{"soft hyphen removed", "rando­mization", "en", "randomization"},
		{"zero width removed", "ECG​ recording", "en", "ecg recording"},
		{"control chars removed", "dose\x02 level", "en", "dose level"},
		{"nfkc ligature", "ﬁnal visit", "en", "final visit"},
		{"turkish dotless", "IĞDIR", "tr", "ığdır"},
		{"empty", "", "en", ""},
		{"unknown language total", "Besuch 1", "zz-unknown", "besuch 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.raw, tc.lang); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestTextDeterministic(t *testing.T) {
	raw := "Schedule of ­Activities\t(SoA)"
	first := Text(raw, "en")
	for i := 0; i < 10; i++ {
		if got := Text(raw, "en"); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestHash(t *testing.T) {
	a := Hash("blood draw")
	b := Hash("blood draw")
	if a != b {
		t.Fatalf("hash not stable: %d != %d", a, b)
	}
	if c := Hash("blood draws"); c == a {
		t.Fatalf("distinct inputs collided: %d", c)
	}
	if Hash("") == 0 {
		t.Fatalf("empty hash should still be keyed, got 0")
	}
}

func TestTextHashAgreesWithParts(t *testing.T) {
	s, h := TextHash("Blood  Draw", "en")
	if s != "blood draw" {
		t.Fatalf("normalized = %q", s)
	}
	if h != Hash(s) {
		t.Fatalf("hash mismatch")
	}
}
