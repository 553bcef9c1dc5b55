package textfilter

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Characters models tend to use for emphasis or quoting. They render badly in
// plain-prose output, so they are removed from every free-text field.
var markupChars = regexp.MustCompile("[*\"'`#“”‘’«»]")

var (
	blankLines = regexp.MustCompile(`\n\s*\n`)
	spaceRuns  = regexp.MustCompile(`[ \t]{2,}`)
)

// Clean normalises a single free-text field: NFC form, markup characters
// removed, runs of spaces collapsed, surrounding whitespace trimmed.
func Clean(text string) string {
	text = norm.NFC.String(text)
	text = markupChars.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanProse is Clean for multi-paragraph text; blank lines are collapsed to
// single newlines.
func CleanProse(text string) string {
	text = norm.NFC.String(text)
	text = markupChars.ReplaceAllString(text, "")
	text = blankLines.ReplaceAllString(text, "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ContainsMarkup reports whether text still carries characters Clean removes.
func ContainsMarkup(text string) bool {
	return markupChars.MatchString(text)
}
