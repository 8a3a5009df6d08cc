package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. The only permitted
// mutation after insert is the recipient setting ReadAt; nil ReadAt means
// unread.
type Message struct {
	ID             string     `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       string     `db:"sender_id" json:"sender_id"`
	Content        string     `db:"content" json:"content"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ReadAt         *time.Time `db:"read_at" json:"read_at"`
}

// NewMessage validates and normalizes an outgoing message.
func NewMessage(conversationID, senderID, content string) (Message, error) {
	if conversationID == "" || senderID == "" {
		return Message{}, ErrNotParticipant
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// UnreadBy reports whether the message counts toward viewerID's unread total:
// sent by someone else and not yet read.
func (m Message) UnreadBy(viewerID string) bool {
	return m.SenderID != viewerID && m.ReadAt == nil
}

// AppendUnique returns msgs with msg appended unless a message with the same
// ID is already present. This is the de-duplication guard between the
// sender's optimistic cache insert and the realtime echo of the same row.
// The input slice is never mutated; earlier readers keep their snapshot.
func AppendUnique(msgs []Message, msg Message) []Message {
	for _, m := range msgs {
		if m.ID == msg.ID {
			return msgs
		}
	}
	out := make([]Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, msg)
}

// MarkRead returns msgs with read_at stamped on every message unread by
// viewerID, without mutating the input. Already-read rows keep their
// original timestamp, which makes repeated calls idempotent.
func MarkRead(msgs []Message, viewerID string, at time.Time) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if out[i].UnreadBy(viewerID) {
			t := at
			out[i].ReadAt = &t
		}
	}
	return out
}
