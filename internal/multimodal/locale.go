package multimodal

import "strings"

// DefaultLocale is used for the synthesis fallback attempt.
const DefaultLocale = "en-US"

var locales = map[string]string{
	"en":  "en-US",
	"hi":  "hi-IN",
	"bn":  "bn-IN",
	"te":  "te-IN",
	"mr":  "mr-IN",
	"ta":  "ta-IN",
	"gu":  "gu-IN",
	"kn":  "kn-IN",
	"ml":  "ml-IN",
	"pa":  "pa-IN",
	"ur":  "ur-IN",
	"or":  "or-IN",
	"as":  "as-IN",
	"ne":  "ne-NP",
	"sd":  "sd-IN",
	"kok": "kok-IN",
}

// Locale maps an application language code to the vendor locale.
// Unknown codes become "{code}-{CODE}"; the result is never empty.
func Locale(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = "en"
	}
	if loc, ok := locales[lang]; ok {
		return loc
	}
	return lang + "-" + strings.ToUpper(lang)
}
