package enhance

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// Local is the in-process fallback enhancer used when no enhancement
// service is configured. It cannot restore punctuation the way a model
// can, but it normalizes whitespace and repairs casing: sentence starts
// and, for English, the standalone pronoun I.
type Local struct{}

// NewLocal constructs the fallback enhancer.
func NewLocal() Local {
	return Local{}
}

// Enhance applies local casing normalization to text.
func (Local) Enhance(_ context.Context, text string, language string) (string, error) {
	language = ResolveLanguage(text, language)

	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return "", nil
	}

	normalized = capitalizeSentenceStarts(normalized)
	if language == "en" {
		normalized = capitalizePronounI(normalized)
	}
	return normalized, nil
}

// nonTerminalAbbreviations are tokens whose trailing period does not end a sentence.
var nonTerminalAbbreviations = map[string]struct{}{
	"dr":   {},
	"e.g":  {},
	"etc":  {},
	"fig":  {},
	"i.e":  {},
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"prof": {},
	"vs":   {},
}

func capitalizeSentenceStarts(text string) string {
	runes := []rune(text)

	var out strings.Builder
	out.Grow(len(text))

	capitalizeNext := true
	for i, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
			capitalizeNext = false
		} else if capitalizeNext && unicode.IsDigit(r) {
			capitalizeNext = false
		}

		out.WriteRune(r)

		switch r {
		case '.':
			if isSentenceBoundaryPeriod(runes, i) {
				capitalizeNext = true
			}
		case '!', '?':
			capitalizeNext = true
		}
	}

	return out.String()
}

// isSentenceBoundaryPeriod filters out decimals, embedded periods
// (initialisms, domains), and known abbreviations.
func isSentenceBoundaryPeriod(runes []rune, idx int) bool {
	if idx+1 < len(runes) {
		next := runes[idx+1]
		if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '.' {
			return false
		}
	}
	if idx > 0 && idx+1 < len(runes) && unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(runes[idx+1]) {
		return false
	}

	_, known := nonTerminalAbbreviations[tokenBeforePeriod(runes, idx)]
	return !known
}

func tokenBeforePeriod(runes []rune, idx int) string {
	start := idx - 1
	for start >= 0 {
		if r := runes[start]; unicode.IsLetter(r) || r == '.' {
			start--
			continue
		}
		break
	}
	return strings.ToLower(strings.Trim(string(runes[start+1:idx]), "."))
}

var (
	pronounIContraction = regexp.MustCompile(`\bi['’](?:m|d|ll|ve|re)\b`)
	pronounIWord        = regexp.MustCompile(`\bi\b`)
)

func capitalizePronounI(text string) string {
	text = pronounIContraction.ReplaceAllStringFunc(text, func(match string) string {
		return "I" + match[1:]
	})

	matches := pronounIWord.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))
	last := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		out.WriteString(text[last:start])
		if partOfInitialism(text, start, end) {
			out.WriteString(text[start:end])
		} else {
			out.WriteString("I")
		}
		last = end
	}
	out.WriteString(text[last:])
	return out.String()
}

// partOfInitialism reports whether the matched "i" sits inside a dotted
// token such as "i.e." and must keep its case.
func partOfInitialism(text string, start int, end int) bool {
	if end+1 < len(text) && text[end] == '.' && isASCIILetter(text[end+1]) {
		return true
	}
	if start >= 2 && text[start-1] == '.' && isASCIILetter(text[start-2]) {
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
