// Package whatsapp parses WhatsApp chat export files into structured,
// correctly attributed messages. The export format is semi-structured text
// with several header dialects, multi-line message bodies, interleaved
// system notices, and embedded media references; this package recovers
// discrete messages from it with a single linear pass.
package whatsapp

import "time"

// SourceChatExport tags messages recovered from a chat export file.
const SourceChatExport = "chat-export"

// ImageSourceGroup labels pseudo-messages built from image text recovery,
// where the originating conversation is unknown.
const ImageSourceGroup = "image-import"

// UnknownSender is used when the author cannot be determined, e.g. for
// messages reconstructed from images.
const UnknownSender = "unknown"

// ParsedMessage is the assembler's output unit: one discrete message with
// a normalized timestamp, a cleaned author label, and the accumulated
// body including any continuation lines.
type ParsedMessage struct {
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Timestamp   time.Time `json:"timestamp"`
	SenderName  string    `json:"sender_name"`
	SenderPhone string    `json:"sender_phone,omitempty"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	SourceGroup string    `json:"source_group"`
	MediaURLs   []string  `json:"media_urls,omitempty"`
}

// NewImageMessage builds a ParsedMessage-shaped record from text recovered
// out of an image. Images carry no author, so the sender is "unknown"; the
// timestamp comes from the filename convention when decodable, otherwise
// from the supplied clock.
func NewImageMessage(filename, text string, now func() time.Time) ParsedMessage {
	ts, ok := TimestampFromFilename(filename)
	if !ok {
		ts = now()
	}

	return ParsedMessage{
		Date:        ts.Format("2006-01-02"),
		Time:        ts.Format("15:04:05"),
		Timestamp:   ts,
		SenderName:  UnknownSender,
		Content:     text,
		Source:      SourceChatExport,
		SourceGroup: ImageSourceGroup,
	}
}
