// Package sanitize cleans user-supplied run names before they are stored,
// used in export file names, or rendered into markdown resources.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxNameLength is the maximum length of a stored run name.
const MaxNameLength = 80

// MaxLabelLength is the maximum length of a label rendered into markdown.
const MaxLabelLength = 200

var (
	// reXMLTag matches XML/HTML tags, with attributes or self-closing, and
	// processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	reBackticks = regexp.MustCompile("`+")

	reRepeatedHyphens     = regexp.MustCompile(`-{2,}`)
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
	reRepeatedDots        = regexp.MustCompile(`\.{2,}`)
	reSpaces              = regexp.MustCompile(`\s+`)
)

// Name reduces a run name to [a-zA-Z0-9._-], so it is safe as a file name
// component. Spaces become hyphens, repeated separators collapse and leading
// dots or hyphens are dropped. The result is at most MaxNameLength bytes.
func Name(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.TrimSpace(input) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('-')
		}
	}
	s := b.String()

	s = reRepeatedHyphens.ReplaceAllString(s, "-")
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")
	s = reRepeatedDots.ReplaceAllString(s, ".")
	s = strings.TrimLeft(s, ".-")

	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// Label makes text safe to render on a single markdown line: control
// characters and tags are removed, whitespace collapses to single spaces,
// backtick runs and leading heading markers are dropped, and pipes are
// escaped so the text cannot break a table row.
func Label(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reBackticks.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimLeft(s, "#"))
	s = strings.ReplaceAll(s, "|", `\|`)

	if len(s) > MaxLabelLength {
		s = s[:MaxLabelLength] + "..."
	}
	return s
}

// stripControlChars removes ASCII control characters except newline and
// tab, which later collapse to spaces.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r < 0x20 && r != '\n' && r != '\t') || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
