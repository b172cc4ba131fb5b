package render

import (
	"regexp"
	"strings"
)

const maxFilenameLen = 200

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	underscoreRuns       = regexp.MustCompile(`_+`)
)

// SanitizeFilename derives a filesystem-safe base name (no extension) from a
// topic: invalid characters become underscores, whitespace collapses,
// underscore runs collapse, and the result is length-capped and never empty.
func SanitizeFilename(topic string) string {
	name := strings.TrimSpace(topic)
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Join(strings.Fields(name), "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_.")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
		name = strings.Trim(name, "_.")
	}
	if name == "" {
		return "research_report"
	}
	return name
}
