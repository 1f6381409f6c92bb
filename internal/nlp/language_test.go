package nlp

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want Language
	}{
		{"add 5 Maggi", LangEnglish},
		{"how much sugar is left", LangEnglish},
		{"Maggi kitna hai", LangHindi},
		{"5 packet bika aaj", LangHindi},
		{"चीनी कितनी है", LangHindi},
		{"", LangEnglish},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.text); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}
