package whatsapp

import (
	"regexp"
	"strings"
)

// Fragments of WhatsApp housekeeping notices. A message whose content
// contains any of them is protocol noise, not something a human typed.
var systemPhrases = []string{
	"Messages and calls are end-to-end encrypted",
	"created this group",
	"created group",
	"added you",
	"added +",
	"joined using this group's invite link",
	"left the group",
	"removed",
	"changed the group description",
	"changed the group name",
	"changed this group's icon",
	"changed the group picture",
	"This message was deleted",
	"You deleted this message",
	"<Media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"document omitted",
	"sticker omitted",
	"GIF omitted",
	"Contact card omitted",
	"This message was edited",
	"Waiting for this message",
	"security code changed",
	"Tap to learn more",
}

var phoneOnlyRe = regexp.MustCompile(`^\+?\d{10,15}$`)

// minContentLength is the shortest content worth keeping. Anything
// below it is an acknowledgement or emoji fragment with no listing value.
const minContentLength = 5

// isValidMessage reports whether a parsed message is real user content.
// System notices, phone-only lines, export artifacts and trivially short
// content are all rejected.
func isValidMessage(author, content string) bool {
	cleaned := strings.TrimSpace(stripInvisible(content))
	if len(cleaned) < minContentLength {
		return false
	}

	for _, phrase := range systemPhrases {
		if strings.Contains(cleaned, phrase) {
			return false
		}
	}

	if phoneOnlyRe.MatchString(cleaned) {
		return false
	}

	if strings.HasPrefix(content, "‎") || strings.HasPrefix(content, "⁨") {
		return false
	}

	if strings.Contains(author, "System") {
		return false
	}

	return true
}
