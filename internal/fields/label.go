package fields

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Label is one entry of the fixed label vocabulary.
type Label struct {
	Name    string
	pattern *regexp.Regexp
}

func newLabel(name, expr string) Label {
	return Label{Name: name, pattern: regexp.MustCompile(`(?i)^(?:` + expr + `)`)}
}

var (
	LabelTitle          = newLabel("Title", `Title`)
	LabelDescription    = newLabel("Description", `Description`)
	LabelH1             = newLabel("H1", `H1`)
	LabelHeading1       = newLabel("Heading 1", `Heading 1`)
	LabelSlug           = newLabel("Slug", `Slug`)
	LabelProductSection = newLabel("Product Section", `Product\s*Section`)
)

// Vocabulary lists every label in priority order. Any of them ends a
// product section.
var Vocabulary = []Label{
	LabelTitle,
	LabelDescription,
	LabelH1,
	LabelHeading1,
	LabelSlug,
	LabelProductSection,
}

// sectionMarker is searched anywhere in a line, not only at its start.
var sectionMarker = regexp.MustCompile(`(?i)(?:-{3,}\s*)?Product\s*Section`)

// Match reports whether line starts with the label followed by a word
// boundary. On a match it returns the text after the label.
func (l Label) Match(line string) (rest string, ok bool) {
	loc := l.pattern.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	rest = line[loc[1]:]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && isWordRune(r) {
		return "", false
	}
	return rest, true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isBoundary reports whether line starts with any vocabulary label.
func isBoundary(line string) bool {
	for _, l := range Vocabulary {
		if _, ok := l.Match(line); ok {
			return true
		}
	}
	return false
}
