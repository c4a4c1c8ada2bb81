package domain

import (
	"time"
)

// Message represents an immutable chat event.
// Seq is the per-chat position: gapless, strictly increasing, starting at 1.
type Message struct {
	Seq       uint64
	ChatID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// Page is one window of a chat log read. HasMore tells the caller
// whether messages exist beyond the last returned sequence number.
type Page struct {
	Messages []Message
	HasMore  bool
}

// LastSeq returns the sequence number of the last message in the page,
// or 0 for an empty page.
func (p Page) LastSeq() uint64 {
	if len(p.Messages) == 0 {
		return 0
	}
	return p.Messages[len(p.Messages)-1].Seq
}
