package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

const maxSanitizePasses = 8

// SanitizeText strips every tag from user supplied text. Entities are decoded
// so apostrophes and ampersands stay readable, and the text is sanitized
// again until decoding no longer reveals markup.
func SanitizeText(s string) string {
	for pass := 0; pass < maxSanitizePasses; pass++ {
		cleaned := html.UnescapeString(strictPolicy.Sanitize(s))

		if cleaned == s {
			return strings.TrimSpace(cleaned)
		}

		s = cleaned
	}

	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
