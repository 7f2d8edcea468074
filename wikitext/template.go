package wikitext

import "strings"

// Template is one {{...}} block with its parsed parameters.
type Template struct {
	Name   string
	params []param
}

type param struct {
	name  string
	value string
}

// EntityType classifies an infobox by the kind of thing it describes.
type EntityType string

const (
	TypeCharacter EntityType = "character"
	TypePlace     EntityType = "place"
	TypeObject    EntityType = "object"
	TypeBook      EntityType = "book"
	TypeEvent     EntityType = "event"
	TypeBattle    EntityType = "battle"
	TypeWar       EntityType = "war"
	TypeUnknown   EntityType = "unknown"
)

// Special template names used for conflict records instead of a regular
// infobox.
const (
	templateCampaign = "campaign"
	templateBattle   = "battle"
)

// ExtractInfobox returns the first top-level template, in document
// order, whose name contains "infobox" or equals one of the conflict
// templates. The boolean is false when the page carries no exploitable
// structure; that is an expected outcome, not an error.
func ExtractInfobox(markup string) (*Template, bool) {
	for _, tpl := range Templates(markup) {
		name := strings.ToLower(tpl.Name)
		if strings.Contains(name, "infobox") || name == templateCampaign || name == templateBattle {
			return tpl, true
		}
	}
	return nil, false
}

// typeKeywords is searched in order; the first keyword contained in the
// template name wins.
var typeKeywords = []struct {
	keyword string
	etype   EntityType
}{
	{"character", TypeCharacter},
	{"place", TypePlace},
	{"location", TypePlace},
	{"object", TypeObject},
	{"weapon", TypeObject},
	{"artifact", TypeObject},
	{"book", TypeBook},
	{"event", TypeEvent},
	{"battle", TypeBattle},
	{"war", TypeWar},
	{"conflict", TypeWar},
}

// DetectType maps a template to an entity type. The conflict templates
// map directly; otherwise the lower-cased name is searched for a type
// keyword, with "conflict" normalized to war.
func DetectType(tpl *Template) EntityType {
	name := strings.ToLower(strings.TrimSpace(tpl.Name))
	switch name {
	case templateCampaign:
		return TypeWar
	case templateBattle:
		return TypeBattle
	}
	for _, tk := range typeKeywords {
		if strings.Contains(name, tk.keyword) {
			return tk.etype
		}
	}
	return TypeUnknown
}

// Params returns the template's field map. Names are lower-cased and
// trimmed; fields with empty values are dropped.
func (t *Template) Params() map[string]string {
	m := make(map[string]string, len(t.params))
	for _, p := range t.params {
		name := strings.ToLower(strings.TrimSpace(p.name))
		value := strings.TrimSpace(p.value)
		if name != "" && value != "" {
			m[name] = value
		}
	}
	return m
}

// Templates scans markup for top-level {{...}} blocks in source order.
// Nested templates stay embedded in their parent's parameter values.
func Templates(markup string) []*Template {
	var out []*Template
	for i := 0; i < len(markup)-1; i++ {
		if markup[i] != '{' || markup[i+1] != '{' {
			continue
		}
		body, end, ok := matchBraces(markup, i)
		if !ok {
			break
		}
		if tpl := parseTemplate(body); tpl != nil {
			out = append(out, tpl)
		}
		i = end - 1
	}
	return out
}

// matchBraces finds the closing "}}" for the "{{" at start, honoring
// nesting. Returns the inner body and the index just past the close.
func matchBraces(s string, start int) (string, int, bool) {
	depth := 0
	for i := start; i < len(s)-1; i++ {
		switch {
		case s[i] == '{' && s[i+1] == '{':
			depth++
			i++
		case s[i] == '}' && s[i+1] == '}':
			depth--
			i++
			if depth == 0 {
				return s[start+2 : i-1], i + 1, true
			}
		}
	}
	return "", 0, false
}

// parseTemplate splits a template body on top-level pipes. Pipes inside
// nested templates or wikilinks belong to the nested construct.
func parseTemplate(body string) *Template {
	fields := splitTopLevel(body, '|')
	if len(fields) == 0 {
		return nil
	}
	tpl := &Template{Name: strings.TrimSpace(fields[0])}
	if tpl.Name == "" {
		return nil
	}
	for _, f := range fields[1:] {
		name, value, found := strings.Cut(f, "=")
		if !found {
			// Positional parameter, as in {{TA|2968}}.
			tpl.params = append(tpl.params, param{value: strings.TrimSpace(f)})
			continue
		}
		tpl.params = append(tpl.params, param{name: name, value: strings.TrimSpace(value)})
	}
	return tpl
}

// FirstPositional returns the first unnamed parameter value, used by
// era date templates like {{TA|2968}}.
func (t *Template) FirstPositional() string {
	for _, p := range t.params {
		if p.name == "" {
			return p.value
		}
	}
	return ""
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		if i < len(s)-1 {
			switch {
			case (s[i] == '{' && s[i+1] == '{') || (s[i] == '[' && s[i+1] == '['):
				depth++
				i++
				continue
			case (s[i] == '}' && s[i+1] == '}') || (s[i] == ']' && s[i+1] == ']'):
				depth--
				i++
				continue
			}
		}
		if s[i] == sep && depth == 0 {
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}
