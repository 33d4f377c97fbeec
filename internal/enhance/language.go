package enhance

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// LanguageAuto requests per-transcript language detection.
const LanguageAuto = "auto"

// defaultLanguage is used when detection cannot produce a usable code.
const defaultLanguage = "en"

// ResolveLanguage returns the language code to enhance with. A concrete
// configured code passes through untouched; "auto" runs statistical
// detection over the transcript text.
func ResolveLanguage(text string, configured string) string {
	configured = strings.ToLower(strings.TrimSpace(configured))
	if configured != "" && configured != LanguageAuto {
		return configured
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return defaultLanguage
	}
	return code
}
