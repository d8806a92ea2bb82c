// Package sanitize cleans free text typed by operators before it reaches
// printed labels, invoices, and spreadsheets.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`[ \t]+`)
)

var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// Text strips markup, collapses runs of spaces, and trims the result.
// Entities are decoded and the result stripped again, so encoded tags do
// not survive.
func Text(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = entities.Replace(out)
	out = tagPattern.ReplaceAllString(out, "")
	out = spacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Line is Text for single-line fields such as names and addresses. Line
// breaks become spaces.
func Line(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return Text(s)
}
