package language

import (
	"strings"

	"golang.org/x/text/language"
)

// agnostic lists codes that mean "no linguistic content" rather than a language.
var agnostic = map[string]struct{}{
	"":    {},
	"00":  {},
	"xx":  {},
	"und": {},
	"zxx": {},
	"mis": {},
	"mul": {},
}

// bibliographic maps ISO 639-2/B codes still common in container metadata to
// their terminology form.
var bibliographic = map[string]string{
	"alb": "sqi", "arm": "hye", "baq": "eus", "bur": "mya", "chi": "zho",
	"cze": "ces", "dut": "nld", "fre": "fra", "geo": "kat", "ger": "deu",
	"gre": "ell", "ice": "isl", "mac": "mkd", "mao": "mri", "may": "msa",
	"per": "fas", "rum": "ron", "slo": "slk", "tib": "bod", "wel": "cym",
}

// IsAgnostic reports whether code denotes textless or undetermined content.
func IsAgnostic(code string) bool {
	_, ok := agnostic[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Normalize converts an ISO 639-1, ISO 639-2 (B or T) or BCP 47 tag to its
// shortest base language code, lowercased. Agnostic markers become "".
// Unparseable input is returned trimmed and lowercased.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if IsAgnostic(code) {
		return ""
	}
	if term, ok := bibliographic[code]; ok {
		code = term
	}
	if base, err := language.ParseBase(code); err == nil {
		return base.String()
	}
	if tag, err := language.Parse(code); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	return code
}

// Region extracts the region subtag from a BCP 47 tag such as "en-US".
// Returns "" when the tag carries no explicit region.
func Region(tag string) string {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return ""
	}
	region, conf := parsed.Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}

// Same reports whether two codes name the same base language.
func Same(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// SplitList splits a comma separated language list, normalizes each entry and
// drops duplicates and agnostic markers while preserving order.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return NormalizeList(strings.Split(value, ","))
}

// NormalizeList deduplicates and normalizes a list of language codes.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		code := Normalize(lang)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}
	return normalized
}
