package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalizer cleans raw WhatsApp text before classification: Devanagari
// transliteration, spoken-number conversion, filler removal and duplicate
// collapsing. All tables are fixed at construction; Normalize is pure.
type Normalizer struct {
	vocab       map[string]string
	numberRes   []numberRule
	ambiguousRe *regexp.Regexp
	fillerRe    *regexp.Regexp
	spaceRe     *regexp.Regexp
}

type numberRule struct {
	re    *regexp.Regexp
	digit string
}

// devanagariDigits maps Devanagari digit runes 1:1 to ASCII.
var devanagariDigits = map[rune]rune{
	'०': '0', '१': '1', '२': '2', '३': '3', '४': '4',
	'५': '5', '६': '6', '७': '7', '८': '8', '९': '9',
}

// defaultVocab transliterates common Devanagari shop vocabulary. Unmapped
// tokens pass through unchanged.
var defaultVocab = map[string]string{
	"चीनी":    "cheeni",
	"दूध":     "doodh",
	"चावल":    "chawal",
	"आटा":     "atta",
	"तेल":     "tel",
	"साबुन":   "sabun",
	"मैगी":    "maggi",
	"बिस्कुट": "biscuit",
	"नमक":     "namak",
	"दाल":     "dal",
	"घी":      "ghee",
	"स्टॉक":   "stock",
	"स्टाक":   "stock",
	"उधार":    "udhar",
	"जोड़ो":    "jodo",
	"जोड़":     "jod",
	"बेचा":    "becha",
	"बिका":    "bika",
	"बेच":     "bech",
	"लिया":    "liya",
	"दिया":    "diya",
	"आया":     "aaya",
	"कितना":   "kitna",
	"कितनी":   "kitni",
	"कितने":   "kitne",
	"बताओ":    "batao",
	"करो":     "karo",
	"कर":      "kar",
	"दो":      "do",
	"आज":      "aaj",
	"मदद":     "madad",
	"गलत":     "galat",
	"सामान":   "saman",
	"माल":     "maal",
	"हिसाब":   "hisaab",
	"मुनाफा":  "munafa",
	"का":      "ka",
	"के":      "ke",
	"की":      "ki",
	"है":      "hai",
	"नहीं":    "nahi",
}

// Hindi and English number words. "do" (two) is deliberately absent here:
// it is also the imperative particle in "kar do" and gets its own
// verb-anchored rule.
var defaultNumberWords = []struct {
	word  string
	digit string
}{
	{"ek", "1"},
	{"teen", "3"},
	{"char", "4"},
	{"chaar", "4"},
	{"paanch", "5"},
	{"panch", "5"},
	{"chhe", "6"},
	{"cheh", "6"},
	{"saat", "7"},
	{"aath", "8"},
	{"nau", "9"},
	{"das", "10"},
	{"dus", "10"},
	{"bees", "20"},
	{"pachas", "50"},
	{"sau", "100"},
	{"one", "1"},
	{"two", "2"},
	{"three", "3"},
	{"four", "4"},
	{"five", "5"},
	{"six", "6"},
	{"seven", "7"},
	{"eight", "8"},
	{"nine", "9"},
	{"ten", "10"},
	{"twenty", "20"},
}

// actionVerbPattern anchors the ambiguous "do": it becomes the digit 2
// only when the very next word is an add/sell/check-family verb, never at
// the end of a phrase or before a different command suffix like "kar do".
const actionVerbPattern = `add|daal|daalo|jodo|jod|laya|laye|aaya|aaye|mila|sell|sold|bech|becho|becha|bika|bik|nikala|nikalo|diya|check|dekho|batao|kitna|kitne|kitni`

var defaultFillers = []string{
	"um", "uh", "umm", "uhh", "hmm", "hmmm", "like", "you know",
	"matlab", "accha", "acha", "toh", "na", "haan ji", "are", "arey",
}

// NewNormalizer builds a Normalizer with the default tables.
func NewNormalizer() *Normalizer {
	n := &Normalizer{
		vocab:   defaultVocab,
		spaceRe: regexp.MustCompile(`\s+`),
	}

	for _, nw := range defaultNumberWords {
		n.numberRes = append(n.numberRes, numberRule{
			re:    regexp.MustCompile(`(?i)\b` + nw.word + `\b`),
			digit: nw.digit,
		})
	}

	n.ambiguousRe = regexp.MustCompile(`(?i)\bdo\s+(` + actionVerbPattern + `)\b`)

	escaped := make([]string, 0, len(defaultFillers))
	for _, f := range defaultFillers {
		escaped = append(escaped, regexp.QuoteMeta(f))
	}
	n.fillerRe = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)

	return n
}

// Normalize cleans a raw message. For non-empty input the result is never
// empty: if cleaning strips everything, the original text is returned.
func (n *Normalizer) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	text := n.transliterateDigits(raw)
	text = n.transliterateVocab(text)
	text = n.convertNumberWords(text)
	text = n.fillerRe.ReplaceAllString(text, " ")
	text = n.collapseRepeats(text)
	text = strings.TrimSpace(n.spaceRe.ReplaceAllString(text, " "))

	if text == "" {
		return raw
	}
	return text
}

func (n *Normalizer) transliterateDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := devanagariDigits[r]; ok {
			return d
		}
		return r
	}, text)
}

// transliterateVocab maps known Devanagari tokens to Latin, preserving any
// leading/trailing punctuation around each token.
func (n *Normalizer) transliterateVocab(text string) string {
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		lead, core, trail := splitPunct(tok)
		if latin, ok := n.vocab[core]; ok {
			tokens[i] = lead + latin + trail
		}
	}
	return strings.Join(tokens, " ")
}

func splitPunct(tok string) (lead, core, trail string) {
	runes := []rune(tok)
	start, end := 0, len(runes)
	for start < end && isPunct(runes[start]) {
		start++
	}
	for end > start && isPunct(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func (n *Normalizer) convertNumberWords(text string) string {
	// Verb-anchored "do" first so the plain rules below can't clobber it.
	text = n.ambiguousRe.ReplaceAllString(text, "2 $1")
	for _, nr := range n.numberRes {
		text = nr.re.ReplaceAllString(text, nr.digit)
	}
	return text
}

// collapseRepeats removes consecutive duplicate words ("Maggi Maggi" →
// "Maggi"). Token-wise comparison keeps product names with legitimately
// repeated substrings intact.
func (n *Normalizer) collapseRepeats(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return text
	}
	out := tokens[:1]
	for _, tok := range tokens[1:] {
		if !strings.EqualFold(tok, out[len(out)-1]) {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}
