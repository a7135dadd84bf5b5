package models

import "strings"

// Message is one entry in a structured conversation transcript, as
// produced by chat frontends that mix text with other content.
type Message struct {
	// Role identifies the sender ("user", "assistant", ...).
	Role string `json:"role"`
	// Segments are the parts of the message body.
	Segments []Segment `json:"segments"`
}

// Segment is a single typed part of a message body.
type Segment struct {
	// Type is the segment kind; only "text" carries request content.
	Type string `json:"type"`
	// Text is the segment payload for text segments.
	Text string `json:"text,omitempty"`
}

// SegmentTypeText marks segments whose Text field carries the payload.
const SegmentTypeText = "text"

// RequestFromMessages normalizes a structured message list to a single
// request string. The newest message wins; its text segments are joined
// with spaces and non-text segments are ignored. Older messages are
// consulted only when newer ones contain no text at all.
func RequestFromMessages(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		var parts []string
		for _, seg := range msgs[i].Segments {
			if seg.Type != SegmentTypeText {
				continue
			}
			if text := strings.TrimSpace(seg.Text); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}
