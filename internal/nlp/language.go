package nlp

import (
	"strings"
	"unicode"
)

// Language selects the reply template family.
type Language string

const (
	LangEnglish Language = "english"
	LangHindi   Language = "hindi"
)

// hindiSignals are common Hinglish tokens that mark a Latin-script
// message as Hindi-leaning.
var hindiSignals = []string{
	"hai", "hain", "kitna", "kitni", "kitne", "karo", "kar do", "batao",
	"bika", "becha", "aaya", "laya", "daal", "nahi", "aaj", "udhar",
	"munafa", "hisaab", "madad", "wala", "bacha", "kaun",
}

// DetectLanguage picks Hindi when the message carries Devanagari script
// or enough Hinglish signal words; otherwise English.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return LangHindi
		}
	}

	lower := " " + strings.ToLower(text) + " "
	hits := 0
	for _, sig := range hindiSignals {
		if strings.Contains(lower, " "+sig+" ") {
			hits++
		}
	}
	if hits >= 1 {
		return LangHindi
	}
	return LangEnglish
}
