package whatsapp

import (
	"regexp"
	"time"
)

// Filename shapes that encode a capture date, most specific first.
var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)IMG-(\d{8})-WA`),
	regexp.MustCompile(`(?i)VID-(\d{8})-WA`),
	regexp.MustCompile(`(\d{8})-(\d{6})`),
	regexp.MustCompile(`(\d{8})`),
}

// TimestampFromFilename recovers a capture timestamp from media
// filenames such as IMG-20231225-WA0001.jpg or 20231225-103045.png.
// The date digits are YYYYMMDD; the optional second group is HHMMSS.
// It reports false when the filename encodes no date or the digits do
// not form a real calendar date.
func TimestampFromFilename(filename string) (time.Time, bool) {
	for _, re := range filenamePatterns {
		m := re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}

		layout, value := "20060102", m[1]
		if len(m) > 2 && m[2] != "" {
			layout, value = "20060102-150405", m[1]+"-"+m[2]
		}

		ts, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return ts, true
	}
	return time.Time{}, false
}
