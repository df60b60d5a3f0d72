package outfit

import (
	"regexp"
	"strings"
)

var (
	sanitizeFenceRegex     = regexp.MustCompile("(?s)```(?:json\\s*)?.*?```")
	sanitizeSelectionRegex = regexp.MustCompile(`(?s)\{.*"selected_item_ids".*\}`)
	sanitizeObjectRegex    = regexp.MustCompile(`\{[^}]*[:"][^}]*\}`)
	sanitizeListRegex      = regexp.MustCompile(`\[[^\]]+\]`)
	sanitizeStrayRegex     = regexp.MustCompile("[{}\"'`]")
	sanitizeNewlineRegex   = regexp.MustCompile(`\\n+`)
	sanitizeLeadLabelRegex = regexp.MustCompile(`(?i)\b(json\s*reply|json|reply|explain)\s*[:\-]\s*`)
	sanitizeTailLabelRegex = regexp.MustCompile(`(?is)\b(tags|image_prompt)\s*[:\-].*$`)
	sanitizeSpacesRegex    = regexp.MustCompile(`[^\S\n]{2,}`)
)

// SanitizeForDisplay scrubs tool/JSON artifacts out of text destined for the
// end user: fenced blocks, selection objects, leaked labels, stray braces and
// literal escaped newlines. Total and idempotent.
//
// Stripping one label can expose another ("json explain- : x" leaves
// "json : x"), so the pipeline runs to a fixed point. Every pass only
// shrinks the string, which bounds the loop.
func SanitizeForDisplay(text string) string {
	cleaned := text
	for {
		next := sanitizePass(cleaned)
		if next == cleaned {
			return cleaned
		}
		cleaned = next
	}
}

func sanitizePass(text string) string {
	cleaned := sanitizeFenceRegex.ReplaceAllString(text, "")
	cleaned = sanitizeSelectionRegex.ReplaceAllString(cleaned, "")
	cleaned = sanitizeObjectRegex.ReplaceAllString(cleaned, "")
	cleaned = sanitizeListRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = sanitizeStrayRegex.ReplaceAllString(cleaned, "")
	cleaned = sanitizeNewlineRegex.ReplaceAllString(cleaned, " ")
	cleaned = sanitizeLeadLabelRegex.ReplaceAllString(cleaned, "")
	cleaned = sanitizeTailLabelRegex.ReplaceAllString(cleaned, "")
	cleaned = sanitizeSpacesRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
