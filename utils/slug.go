package utils

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name: lowercase, runs of
// non-alphanumerics collapsed to single hyphens, outer hyphens trimmed.
func Slugify(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
