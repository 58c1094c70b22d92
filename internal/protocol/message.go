// Package protocol defines the wire format shared by the chat server and
// its clients: one JSON-encoded message per newline-terminated line.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates how a message is displayed. It never affects routing.
type Kind string

const (
	KindText   Kind = "Text"
	KindJoin   Kind = "Join"
	KindLeave  Kind = "Leave"
	KindSystem Kind = "System"
)

// SystemSender is the reserved sender name for server-generated messages.
const SystemSender = "System"

// QuitCommand ends a session from the client side.
const QuitCommand = "/quit"

// WhoCommand asks the server for the list of connected usernames.
const WhoCommand = "/who"

// Message is the unit of chat communication. Fields are set once at
// construction and never mutated afterwards, so a message can be shared
// freely between goroutines.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Kind      Kind   `json:"kind"`
}

// NewMessage builds a message with a fresh unique id and the current time
// in seconds since epoch.
func NewMessage(sender, content string, kind Kind) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().Unix(),
		Kind:      kind,
	}
}

// Encode renders the message as a single JSON record without a trailing
// newline. json.Marshal escapes control characters, so the result never
// contains an embedded record terminator.
func (m Message) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	return string(data), nil
}

// Decode parses one wire record. An error means the line is not a protocol
// message; callers should skip the line rather than tear the session down.
func Decode(line string) (Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if m.ID == "" {
		return Message{}, fmt.Errorf("decode message: missing id")
	}
	switch m.Kind {
	case KindText, KindJoin, KindLeave, KindSystem:
	default:
		return Message{}, fmt.Errorf("decode message: unknown kind %q", m.Kind)
	}
	return m, nil
}
