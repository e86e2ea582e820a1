// File: velora/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var supported = []language.Tag{
	language.English, // en (fallback)
	language.German,  // de
	language.Spanish, // es
}

var matcher = language.NewMatcher(supported)

// catalogs maps a base language code to its message catalog.
var catalogs = map[string]map[string]string{}

func init() {
	for _, tag := range supported {
		code := tag.String()
		data, err := localeFS.ReadFile("locales/" + code + ".json")
		if err != nil {
			log.Fatalf("i18n: missing locale bundle %s: %v", code, err)
		}
		var msgs map[string]string
		if err := json.Unmarshal(data, &msgs); err != nil {
			log.Fatalf("i18n: invalid locale bundle %s: %v", code, err)
		}
		catalogs[code] = msgs
	}
}

// Negotiate resolves an Accept-Language header (or a stored user locale)
// to a supported base language code.
func Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return "en"
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx].String()
}

// T resolves a message key for the given locale, applying positional
// fmt-style arguments. Unknown keys fall back to English, then to the
// key itself so a missing translation never blanks a notification.
func T(locale, key string, args ...any) string {
	msgs, ok := catalogs[locale]
	if !ok {
		msgs = catalogs["en"]
	}
	msg, ok := msgs[key]
	if !ok {
		if en, found := catalogs["en"][key]; found {
			msg = en
		} else {
			return key
		}
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Supported lists the base language codes the platform ships catalogs for.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, tag := range supported {
		out = append(out, tag.String())
	}
	return out
}

// IsSupported reports whether the given locale code has a catalog.
func IsSupported(locale string) bool {
	_, ok := catalogs[strings.ToLower(locale)]
	return ok
}
