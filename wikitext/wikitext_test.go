package wikitext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedmoudjahed/semantic-web/wikitext"
)

const characterPage = `
'''Frodo Baggins''' was a [[Hobbit]] of the [[Shire]].

{{Character infobox
|name=Frodo Baggins
|race=[[Hobbit]]
|gender=Male
|birth=[[TA]] 2968
|othernames=Mr. Underhill<br>Ring-bearer
|image=Frodo.png
|notes=
}}

{{Navbox|something else}}
`

func TestExtractInfobox(t *testing.T) {
	tpl, ok := wikitext.ExtractInfobox(characterPage)
	require.True(t, ok)
	assert.Equal(t, "Character infobox", tpl.Name)
}

func TestExtractInfoboxFirstMatchWins(t *testing.T) {
	page := "{{Battle\n|name=Battle of Five Armies\n}}\n{{Character infobox\n|name=Thorin\n}}"
	tpl, ok := wikitext.ExtractInfobox(page)
	require.True(t, ok)
	assert.Equal(t, "Battle", tpl.Name)
}

func TestExtractInfoboxNotFound(t *testing.T) {
	_, ok := wikitext.ExtractInfobox("Just prose with a {{Navbox|x}} template.")
	assert.False(t, ok)

	_, ok = wikitext.ExtractInfobox("")
	assert.False(t, ok)
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		markup string
		want   wikitext.EntityType
	}{
		{"{{Character infobox|name=X}}", wikitext.TypeCharacter},
		{"{{Infobox location|name=X}}", wikitext.TypePlace},
		{"{{Weapon infobox|name=X}}", wikitext.TypeObject},
		{"{{Infobox book|name=X}}", wikitext.TypeBook},
		{"{{Campaign|name=X}}", wikitext.TypeWar},
		{"{{Battle|name=X}}", wikitext.TypeBattle},
		{"{{Conflict infobox|name=X}}", wikitext.TypeWar},
		{"{{Infobox|name=X}}", wikitext.TypeUnknown},
	}
	for _, tt := range tests {
		tpls := wikitext.Templates(tt.markup)
		require.Len(t, tpls, 1, tt.markup)
		assert.Equal(t, tt.want, wikitext.DetectType(tpls[0]), tt.markup)
	}
}

func TestParamsDropsEmptyValues(t *testing.T) {
	tpl, ok := wikitext.ExtractInfobox(characterPage)
	require.True(t, ok)

	params := tpl.Params()
	assert.Equal(t, "Frodo Baggins", params["name"])
	assert.Equal(t, "[[Hobbit]]", params["race"])
	assert.Equal(t, "[[TA]] 2968", params["birth"])
	_, present := params["notes"]
	assert.False(t, present, "empty-valued fields are dropped")
}

func TestParamsKeepsNestedTemplates(t *testing.T) {
	tpls := wikitext.Templates("{{Character infobox|birth={{TA|2968}}|name=Frodo}}")
	require.Len(t, tpls, 1)
	params := tpls[0].Params()
	assert.Equal(t, "{{TA|2968}}", params["birth"])
	assert.Equal(t, "Frodo", params["name"])
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[[Hobbit]]", "Hobbit"},
		{"[[Shire|the Shire]]", "the Shire"},
		{"'''Bold''' and ''italic''", "Bold and italic"},
		{"Rohan<ref>LotR, App. A</ref>", "Rohan"},
		{"A sword {{small|of Gondolin}}", "A sword"},
		{`"Sting"`, "Sting"},
		{"text with  <span>tags</span> inside", "text with tags inside"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wikitext.Clean(tt.in), tt.in)
	}
}

func TestInternalLinks(t *testing.T) {
	text := "[[Hobbit]]s of [[the Shire|Shire]] [[File:Map.png]] [[Category:Hobbits]] [[Moria#Gates]]"
	assert.Equal(t, []string{"Hobbit", "the Shire"}, wikitext.InternalLinks(text))
	assert.Nil(t, wikitext.InternalLinks(""))
	assert.Nil(t, wikitext.InternalLinks("no links here"))
}

func TestSplitBr(t *testing.T) {
	assert.Equal(t,
		[]string{"Mr. Underhill", "Ring-bearer"},
		wikitext.SplitBr("Mr. Underhill<br>Ring-bearer"))
	assert.Equal(t,
		[]string{"a", "b", "c"},
		wikitext.SplitBr("a<br/>b<BR >c"))
	assert.Nil(t, wikitext.SplitBr(""))
}

func TestCleanDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{{TA|2968}}", "TA 2968"},
		{"{{FoA|120}}", "FoA 120"},
		{"[[TA]] 2968", "TA 2968"},
		{"{{SA|3441}}<ref>App. B</ref>", "SA 3441"},
		{"29 September, TA 3021", "29 September, TA 3021"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wikitext.CleanDate(tt.in), tt.in)
	}
}

func TestValidDate(t *testing.T) {
	for _, valid := range []string{"TA 2968", "29 September", "FoA 61"} {
		assert.True(t, wikitext.ValidDate(valid), valid)
	}
	for _, invalid := range []string{"", "unknown", "Unknown", "c.", "around", "Late Third Age", "early first age", " , ."} {
		assert.False(t, wikitext.ValidDate(invalid), invalid)
	}
}
