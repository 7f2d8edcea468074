// Package wikitext parses the slice of MediaWiki markup this pipeline
// needs: top-level templates and their parameters, internal links, and
// the cleanup rules for turning field values into plain text.
package wikitext

import (
	"regexp"
	"strings"
)

var (
	refTag       = regexp.MustCompile(`(?s)<ref[^>]*>.*?</ref>`)
	refSelfClose = regexp.MustCompile(`<ref[^>]*/>`)
	htmlTag      = regexp.MustCompile(`<[^>]+>`)
	footnote     = regexp.MustCompile(`\[\d+\]`)
	bracketed    = regexp.MustCompile(`\[.*?\]`)
	whitespace   = regexp.MustCompile(`\s+`)
	wikilink     = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)
	brTag        = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// Clean strips wiki markup from a field value and returns plain text:
// links are replaced by their display text, templates and refs removed,
// HTML tags dropped, whitespace collapsed, surrounding quotes trimmed.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	s := refTag.ReplaceAllString(text, "")
	s = refSelfClose.ReplaceAllString(s, "")
	s = stripTemplates(s)
	s = wikilink.ReplaceAllStringFunc(s, func(m string) string {
		inner := m[2 : len(m)-2]
		if _, display, found := strings.Cut(inner, "|"); found {
			return display
		}
		return inner
	})
	s = strings.ReplaceAll(s, "'''", "")
	s = strings.ReplaceAll(s, "''", "")
	s = htmlTag.ReplaceAllString(s, "")
	s = footnote.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// stripTemplates removes {{...}} blocks wholesale, nesting included.
func stripTemplates(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i < len(s)-1 && s[i] == '{' && s[i+1] == '{' {
			if _, end, ok := matchBraces(s, i); ok {
				i = end - 1
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// excludedPrefixes are link namespaces that mark categorical tags, not
// cross-references to entities.
var excludedPrefixes = []string{
	"category:", "file:", "image:", "template:", "wikipedia:",
	"help:", "special:", "talk:", "user:", "portal:",
}

// InternalLinks extracts wikilink targets from a field value, skipping
// namespace links and fragment-only references.
func InternalLinks(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, m := range wikilink.FindAllStringSubmatch(text, -1) {
		title := m[1]
		if target, _, found := strings.Cut(title, "|"); found {
			title = target
		}
		title = strings.TrimSpace(title)
		if title == "" || strings.Contains(title, "#") {
			continue
		}
		lower := strings.ToLower(title)
		excluded := false
		for _, p := range excludedPrefixes {
			if strings.HasPrefix(lower, p) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, title)
		}
	}
	return out
}

// SplitBr splits a multi-valued field on <br> markers and drops empty
// segments.
func SplitBr(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, part := range brTag.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
