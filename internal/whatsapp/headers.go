package whatsapp

import "regexp"

// headerMatch holds the pieces of a recognized message header line.
type headerMatch struct {
	datePart string
	timePart string
	author   string
	body     string
}

// Header dialects in priority order, most specific first. A pattern with
// seconds and a meridiem must be tried before its looser siblings or the
// trailing fields bleed into the author capture.
var headerPatterns = []*regexp.Regexp{
	// [25/12/2023, 10:30:45 AM] John: text
	regexp.MustCompile(`(?i)^\[?(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}:\d{2}\s*(?:AM|PM))\]?\s*-?\s*([^:]+?):\s*(.*)$`),
	// [25/12/2023, 10:30 AM] John: text
	regexp.MustCompile(`(?i)^\[?(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}\s*(?:AM|PM))\]?\s*-?\s*([^:]+?):\s*(.*)$`),
	// [25/12/2023, 10:30:45] John: text
	regexp.MustCompile(`^\[?(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}:\d{2})\]?\s*-?\s*([^:]+?):\s*(.*)$`),
	// [25/12/2023, 10:30] John: text
	regexp.MustCompile(`^\[?(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2})\]?\s*-?\s*([^:]+?):\s*(.*)$`),
	// 25/12/2023, 10:30:45 AM - John: text
	regexp.MustCompile(`(?i)^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}:\d{2}\s*(?:AM|PM))\s*-\s*([^:]+?):\s*(.*)$`),
	// 25/12/2023, 10:30 AM - John: text
	regexp.MustCompile(`(?i)^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}\s*(?:AM|PM))\s*-\s*([^:]+?):\s*(.*)$`),
}

// matchHeader tries each dialect in order and returns the first hit.
func matchHeader(line string) (headerMatch, bool) {
	for _, re := range headerPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return headerMatch{
				datePart: m[1],
				timePart: m[2],
				author:   m[3],
				body:     m[4],
			}, true
		}
	}
	return headerMatch{}, false
}
