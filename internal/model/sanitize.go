package model

import (
	"strings"
	"unicode/utf8"
)

// htmlEntities pairs each escaped character with its entity. "&" comes first.
var htmlEntities = [][2]string{
	{"&", "&amp;"},
	{`"`, "&quot;"},
	{"'", "&#x27;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{"/", "&#x2F;"},
	{`\`, "&#x5C;"},
	{"`", "&#96;"},
}

var htmlEscaper = func() *strings.Replacer {
	var oldnew []string
	for _, e := range htmlEntities {
		oldnew = append(oldnew, e[0], e[1])
	}
	return strings.NewReplacer(oldnew...)
}()

// EscapeHTML makes user text safe to embed in HTML.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// HTMLEntities returns the character/entity pairs EscapeHTML uses, "&" first.
func HTMLEntities() [][2]string {
	out := make([][2]string, len(htmlEntities))
	copy(out, htmlEntities)
	return out
}

// NormalizeContent trims, length-checks and escapes post or comment text.
// The limit applies to what the user typed, not to the escaped form.
func NormalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", ErrContentTooLong
	}
	return EscapeHTML(content), nil
}
