package whatsapp

import (
	"regexp"
	"strings"
)

var (
	invisibleMarksRe = regexp.MustCompile("[‎‏‪-‮⁦-⁩]")
	mediaURLRe       = regexp.MustCompile(`(?i)https?://[^\s]+\.(?:jpg|jpeg|png|gif|mp4|pdf|doc|docx)`)
	phoneRe          = regexp.MustCompile(`\+?\d{10,15}|\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)
	phoneSepRe       = regexp.MustCompile(`[-.\s]`)
)

// stripInvisible removes the Unicode directionality and isolate marks
// that chat exports sprinkle around phone numbers and names.
func stripInvisible(s string) string {
	return invisibleMarksRe.ReplaceAllString(s, "")
}

// extractMediaURLs returns every media link in the text, or nil.
func extractMediaURLs(text string) []string {
	return mediaURLRe.FindAllString(text, -1)
}

// extractPhone returns the first phone-shaped token with separators
// stripped, or "" when the text has none.
func extractPhone(text string) string {
	m := phoneRe.FindString(text)
	if m == "" {
		return ""
	}
	return phoneSepRe.ReplaceAllString(m, "")
}

// cleanSenderName strips phone numbers and invisible marks out of an
// author token, leaving the human-readable name.
func cleanSenderName(author string) string {
	name := phoneRe.ReplaceAllString(author, "")
	name = stripInvisible(name)
	return strings.TrimSpace(name)
}
