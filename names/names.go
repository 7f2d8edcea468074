// Package names canonicalizes entity names so they can be compared
// across sources that share no identifiers, and derives the stable
// slugs used as graph subjects.
package names

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

var (
	nonWord     = regexp.MustCompile(`[^\p{L}\p{N}\-_]`)
	underscores = regexp.MustCompile(`_+`)
)

// apostrophes covers both the ASCII and the typographic form, which the
// wikis use interchangeably.
var apostrophes = strings.NewReplacer("'", "", "’", "")

// Normalize returns the canonical matching key for a name: lower-cased,
// apostrophes stripped, hyphens unified to spaces, whitespace collapsed.
// Empty input yields "".
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(name))
	s = apostrophes.Replace(s)
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// dice compares bigram sets, which tracks difflib-style ratios closely
// enough for threshold-gated matching.
var dice = metrics.NewSorensenDice()

// Similarity scores two names in [0,1]. Symmetric and deterministic;
// both names are normalized before comparison and no I/O is performed.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return strutil.Similarity(na, nb, dice)
}

// Slug derives the entity identifier for a page title. It is a pure
// function of the title: parentheses become underscores, apostrophes
// are removed, spaces become underscores, and anything that is not a
// letter, digit, hyphen or underscore is dropped.
func Slug(title string) string {
	if title == "" {
		return ""
	}
	s := strings.NewReplacer("(", "_", ")", "_").Replace(title)
	s = apostrophes.Replace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = nonWord.ReplaceAllString(s, "")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
