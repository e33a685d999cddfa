package whatsapp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Exports write two-digit years. Values at or below the pivot are read as
// 2000s, everything above as 1900s.
const yearPivot = 30

var twelveHourRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)`)

// normalizeDate converts a D/M/YY or D/M/YYYY token into an ISO
// YYYY-MM-DD string. It returns an error when the token does not have
// exactly three slash-separated components; callers treat that as a
// malformed header and skip the message.
func normalizeDate(datePart string) (string, error) {
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid date format %q: expected day/month/year", datePart)
	}

	day, month, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		n, err := strconv.Atoi(year)
		if err != nil {
			return "", fmt.Errorf("invalid year %q: %w", year, err)
		}
		if n <= yearPivot {
			year = "20" + parts[2]
		} else {
			year = "19" + parts[2]
		}
	}

	return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day)), nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// normalizeTime converts a clock token into 24-hour HH:MM:SS form.
// Tokens carrying AM/PM are converted (12 AM becomes 00, 12 PM stays 12);
// tokens without a meridiem pass through. Missing seconds default to 00.
func normalizeTime(timePart string) string {
	upper := strings.ToUpper(timePart)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") {
		m := twelveHourRe.FindStringSubmatch(timePart)
		if m == nil {
			return timePart
		}

		hours, _ := strconv.Atoi(m[1])
		minutes, seconds, meridiem := m[2], m[3], strings.ToUpper(m[4])

		if meridiem == "PM" && hours != 12 {
			hours += 12
		} else if meridiem == "AM" && hours == 12 {
			hours = 0
		}

		if seconds == "" {
			seconds = "00"
		}
		return fmt.Sprintf("%02d:%s:%s", hours, minutes, seconds)
	}

	if strings.Count(timePart, ":") == 1 {
		return timePart + ":00"
	}
	return timePart
}

// combineTimestamp builds an absolute instant from a normalized ISO date
// and a 24-hour time. Invalid calendar values (month 13, hour 25) fall
// back to the current instant: timestamp accuracy is not safety-critical
// for this pipeline and must never drop a message on its own.
func combineTimestamp(isoDate, isoTime string, now func() time.Time) time.Time {
	ts, err := time.Parse("2006-01-02T15:04:05", isoDate+"T"+isoTime)
	if err != nil {
		return now()
	}
	return ts
}
