package utils

import (
	"html"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips every HTML tag and attribute from user-supplied text.
// bluemonday escapes what it keeps, so entities are folded back to plain text
// for storage; rendering layers escape again.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// SanitizePtr applies SanitizeText to an optional field.
func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeText(*s)
	return &v
}

// Slugify produces a URL-safe, lower-case identifier from a title.
func Slugify(s string) string {
	return slug.Make(s)
}

var richTextPolicy = bluemonday.UGCPolicy()

// SanitizeHTML keeps the formatting tags of editor output and drops
// scripts, event handlers and unsafe URLs.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}
