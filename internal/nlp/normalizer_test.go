package nlp

import "testing"

func TestNormalizeDevanagariVocab(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		in   string
		want string
	}{
		{"मैगी 5 add karo", "maggi 5 add karo"},
		{"चीनी कितनी है", "cheeni kitni hai"},
		{"आटा २ daal do", "atta 2 daal do"},
		{"दूध नहीं बिका आज", "doodh nahi bika aaj"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeNumberWords(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		in   string
		want string
	}{
		{"Maggi paanch add karo", "Maggi 5 add karo"},
		{"das Parle-G becha", "10 Parle-G becha"},
		{"five Maggi sold", "5 Maggi sold"},
		{"bees kg atta laya", "20 kg atta laya"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// "do" is both the number two and the imperative particle; only the
// verb-anchored occurrence converts.
func TestNormalizeAmbiguousDo(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("Maggi do add karo"); got != "Maggi 2 add karo" {
		t.Errorf("verb-anchored do: got %q", got)
	}
	if got := n.Normalize("Maggi 5 add kar do"); got != "Maggi 5 add kar do" {
		t.Errorf("imperative do must survive: got %q", got)
	}
}

func TestNormalizeFillersAndRepeats(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("umm Maggi 5 add karo"); got != "Maggi 5 add karo" {
		t.Errorf("filler removal: got %q", got)
	}
	if got := n.Normalize("Maggi Maggi 5 add karo"); got != "Maggi 5 add karo" {
		t.Errorf("duplicate collapse: got %q", got)
	}
}

func TestNormalizeNeverEmptiesNonEmptyInput(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("umm"); got != "umm" {
		t.Errorf("all-filler input should fall back to the original, got %q", got)
	}
	if got := n.Normalize("   "); got != "   " {
		t.Errorf("whitespace input should pass through, got %q", got)
	}
}
