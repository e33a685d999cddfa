package whatsapp

import (
	"log/slog"
	"strings"
	"time"
)

// Parser turns raw WhatsApp chat export text into structured messages.
type Parser struct {
	log *slog.Logger
	now func() time.Time
}

// NewParser creates a parser. The clock is injectable for tests; pass
// nil to use time.Now.
func NewParser(log *slog.Logger, now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{
		log: log.With("component", "whatsapp_parser"),
		now: now,
	}
}

// accumulator is the message being assembled plus the raw author token,
// which the validity filter needs before it is cleaned.
type accumulator struct {
	msg    ParsedMessage
	author string
}

// Parse scans the export text line by line. Each line matching a header
// dialect starts a new message; lines that match nothing are appended to
// the previous message's content, including blank lines, so multi-line
// bodies survive intact. Lines before the first header are discarded.
// Messages failing the validity gate are dropped.
//
// A structural failure while scanning yields an empty slice, never a
// partial one, so callers can tell "nothing parsed" from a crash.
func (p *Parser) Parse(content, sourceGroup string) (messages []ParsedMessage) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("parse aborted", "panic", r, "source_group", sourceGroup)
			messages = nil
		}
	}()

	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var current *accumulator
	flush := func() {
		if current == nil {
			return
		}
		msg := current.msg
		msg.Content = strings.TrimSpace(stripInvisible(msg.Content))
		if isValidMessage(current.author, msg.Content) {
			msg.MediaURLs = extractMediaURLs(msg.Content)
			msg.SenderPhone = extractPhone(msg.Content)
			messages = append(messages, msg)
		}
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		m, ok := matchHeader(strings.TrimSpace(line))
		if !ok {
			if current != nil {
				current.msg.Content += "\n" + line
			}
			continue
		}

		flush()

		isoDate, err := normalizeDate(m.datePart)
		if err != nil {
			p.log.Warn("skipping message with malformed date",
				"date", m.datePart, "source_group", sourceGroup)
			continue
		}
		isoTime := normalizeTime(m.timePart)

		author := strings.TrimSpace(m.author)
		senderName := cleanSenderName(author)
		if senderName == "" {
			senderName = UnknownSender
		}

		current = &accumulator{
			author: author,
			msg: ParsedMessage{
				Date:        isoDate,
				Time:        isoTime,
				Timestamp:   combineTimestamp(isoDate, isoTime, p.now),
				SenderName:  senderName,
				Content:     m.body,
				Source:      SourceChatExport,
				SourceGroup: sourceGroup,
			},
		}
	}
	flush()

	p.log.Info("parsed chat export",
		"source_group", sourceGroup, "messages", len(messages))

	return messages
}
