package wikitext

import (
	"regexp"
	"strings"
)

// eraCodes are the in-universe calendar templates: First/Second/Third
// Age, Fourth Age, Years of the Trees, Years of the Sun, Valian Years.
var eraCodes = map[string]bool{
	"FA": true, "SA": true, "TA": true, "FoA": true,
	"YT": true, "YS": true, "VY": true,
}

// CleanDate normalizes a date field. Era templates like {{TA|2968}}
// render as "TA 2968"; anything else falls back to plain-text cleaning
// with refs and bracketed annotations removed.
func CleanDate(text string) string {
	if text == "" {
		return ""
	}
	for _, tpl := range Templates(text) {
		name := strings.TrimSpace(tpl.Name)
		if !eraCodes[name] {
			continue
		}
		year := tpl.FirstPositional()
		if year == "" {
			continue
		}
		year = refTag.ReplaceAllString(year, "")
		year = bracketed.ReplaceAllString(year, "")
		return strings.TrimSpace(name + " " + strings.TrimSpace(year))
	}
	s := refTag.ReplaceAllString(text, "")
	s = Clean(s)
	return strings.TrimSpace(bracketed.ReplaceAllString(s, ""))
}

// invalidDates matches placeholder values that look like dates but
// carry no information.
var invalidDates = []*regexp.Regexp{
	regexp.MustCompile(`^[,.\s]*$`),
	regexp.MustCompile(`^c\.$`),
	regexp.MustCompile(`^around$`),
	regexp.MustCompile(`^unknown$`),
	regexp.MustCompile(`^late.*age$`),
	regexp.MustCompile(`^early.*age$`),
}

// ValidDate reports whether a cleaned date is worth asserting.
func ValidDate(date string) bool {
	if date == "" {
		return false
	}
	d := strings.ToLower(strings.TrimSpace(date))
	for _, re := range invalidDates {
		if re.MatchString(d) {
			return false
		}
	}
	return true
}
