package server

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/Chase-Garrett/songbird/internal/protocol"
)

// session carries one accepted TCP connection from username intake to
// cleanup. Each session holds its own hub subscription and registry entry;
// nothing else is shared between sessions.
type session struct {
	conn     net.Conn
	hub      *Hub
	registry *Registry
	username string
}

func newSession(conn net.Conn, hub *Hub, registry *Registry) *session {
	return &session{conn: conn, hub: hub, registry: registry}
}

// run drives the session: read a username, join, pump messages both ways,
// leave, clean up. Any socket error along the way ends this session only
// and is never escalated.
func (s *session) run() {
	defer s.conn.Close()

	reader := bufio.NewReader(s.conn)

	username, err := s.awaitUsername(reader)
	if err != nil {
		return
	}
	s.username = username

	s.registry.Insert(username, s.conn)
	defer s.registry.Remove(username)

	s.broadcast(protocol.NewMessage(username, username+" joined the chat!", protocol.KindJoin))

	welcome := protocol.NewMessage(
		protocol.SystemSender,
		fmt.Sprintf("Welcome to the chat, %s! Type '%s' to exit.", username, protocol.QuitCommand),
		protocol.KindSystem,
	)
	if err := s.writeMessage(welcome); err != nil {
		// The read below will fail immediately and run the normal
		// leave sequence.
		log.Printf("Error welcoming %s: %v", username, err)
	}

	rcv := s.hub.Subscribe()
	go s.outbound(rcv)

	s.inbound(reader)

	// Exactly one leave per session, then cancel the outbound loop
	// instead of waiting for it to notice on its own.
	s.broadcast(protocol.NewMessage(username, username+" left the chat!", protocol.KindLeave))
	rcv.Close()

	log.Printf("Client disconnected: %s", username)
}

// awaitUsername reads the first line as the candidate username. An empty
// name after trimming is rejected with one explanatory line; the session
// never registers or broadcasts anything.
func (s *session) awaitUsername(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	username := strings.TrimSpace(line)
	if username == "" {
		fmt.Fprintf(s.conn, "Username cannot be empty!\n")
		return "", errors.New("empty username")
	}
	return username, nil
}

// inbound reads chat lines until /quit, end of stream, or a read error.
// Empty lines are ignored, /who is answered directly, and everything else
// is published to the hub as a Text message.
func (s *session) inbound(reader *bufio.Reader) {
	for {
		line, err := reader.ReadString('\n')
		content := strings.TrimSpace(line)
		switch content {
		case "":
		case protocol.QuitCommand:
			return
		case protocol.WhoCommand:
			reply := protocol.NewMessage(
				protocol.SystemSender,
				"Online: "+strings.Join(s.registry.Names(), ", "),
				protocol.KindSystem,
			)
			if err := s.writeMessage(reply); err != nil {
				return
			}
		default:
			s.broadcast(protocol.NewMessage(s.username, content, protocol.KindText))
		}
		if err != nil {
			return
		}
	}
}

// outbound drains the hub subscription and writes every record that did
// not originate here. A write error or hub teardown ends the whole session
// by closing the connection, which unblocks the inbound read.
func (s *session) outbound(rcv *Receiver) {
	for {
		encoded, err := rcv.Recv()
		switch {
		case err == nil:
		case errors.Is(err, ErrLagged):
			log.Printf("Receiver for %s lagged; continuing", s.username)
			continue
		case errors.Is(err, ErrReceiverClosed):
			return
		default: // ErrHubClosed
			s.conn.Close()
			return
		}

		msg, err := protocol.Decode(encoded)
		if err != nil {
			log.Printf("Skipping malformed hub record: %v", err)
			continue
		}
		// Never echo a user's own message back to them.
		if msg.Sender == s.username {
			continue
		}
		if _, err := fmt.Fprintf(s.conn, "%s\n", encoded); err != nil {
			s.conn.Close()
			return
		}
	}
}

// writeMessage encodes and writes one message directly to this client,
// bypassing the hub.
func (s *session) writeMessage(msg protocol.Message) error {
	encoded, err := msg.Encode()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.conn, "%s\n", encoded)
	return err
}

// broadcast publishes msg to the hub. Encode failures are internal faults;
// the message is logged and dropped.
func (s *session) broadcast(msg protocol.Message) {
	encoded, err := msg.Encode()
	if err != nil {
		log.Printf("Error encoding %s message: %v", msg.Kind, err)
		return
	}
	s.hub.Publish(encoded)
}
