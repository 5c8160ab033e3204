package utils

import "github.com/microcosm-cc/bluemonday"

// One shared UGC policy covers everything users type: post text, comments,
// display names, bios, and group descriptions.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips disallowed HTML from user-submitted content. Content that
// is empty after sanitizing fails validation, it is never stored.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
