// Package client implements the interactive terminal side of a chat
// session: it pumps stdin lines to the server and renders incoming
// messages with kind-specific coloring.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/Chase-Garrett/songbird/internal/protocol"

	"github.com/fatih/color"
)

var (
	promptColor = color.New(color.FgGreen)
	joinColor   = color.New(color.FgGreen)
	leaveColor  = color.New(color.FgYellow)
	systemColor = color.New(color.FgCyan)
	senderColor = color.New(color.FgBlue, color.Bold)
	noticeColor = color.New(color.FgRed)
)

// Client owns one connection to a chat server and the terminal around it.
type Client struct {
	conn net.Conn
	in   io.Reader
	out  io.Writer
}

// Connect dials the server and attaches the client to the process
// terminal.
func Connect(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	fmt.Printf("Connected to server at %s\n", addr)
	return &Client{conn: conn, in: os.Stdin, out: os.Stdout}, nil
}

// Run sends the username (prompting for one when empty), then relays input
// lines to the server and renders incoming messages until either side ends
// the session.
func (c *Client) Run(username string) error {
	defer c.conn.Close()

	input := bufio.NewReader(c.in)

	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Fprint(c.out, "Enter username: ")
		line, err := input.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	if _, err := fmt.Fprintf(c.conn, "%s\n", username); err != nil {
		return fmt.Errorf("send username: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.receiveLoop()
	}()

	c.prompt()
	for {
		line, err := input.ReadString('\n')
		if err != nil {
			// Input is gone; tell the server we are leaving and wait
			// for it to close the stream.
			fmt.Fprintf(c.conn, "%s\n", protocol.QuitCommand)
			<-done
			return nil
		}
		content := strings.TrimSpace(line)
		if content == "" {
			c.prompt()
			continue
		}
		if _, err := fmt.Fprintf(c.conn, "%s\n", content); err != nil {
			<-done
			return fmt.Errorf("send message: %w", err)
		}
		if content == protocol.QuitCommand {
			<-done
			return nil
		}
		c.prompt()
	}
}

// receiveLoop renders server records until the stream ends. Lines that are
// not protocol messages are ignored.
func (c *Client) receiveLoop() {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := protocol.Decode(line)
		if err != nil {
			continue
		}
		// Clear the pending prompt line before printing, then redraw it.
		fmt.Fprint(c.out, "\r\x1b[K")
		c.render(msg)
		c.prompt()
	}
	fmt.Fprintln(c.out)
	noticeColor.Fprintln(c.out, "Connection closed by server")
}

// render prints one message with its timestamp and kind-specific styling.
func (c *Client) render(msg protocol.Message) {
	ts := time.Unix(msg.Timestamp, 0).Format("15:04:05")
	switch msg.Kind {
	case protocol.KindJoin:
		joinColor.Fprintf(c.out, "[%s] * %s\n", ts, msg.Content)
	case protocol.KindLeave:
		leaveColor.Fprintf(c.out, "[%s] * %s\n", ts, msg.Content)
	case protocol.KindSystem:
		systemColor.Fprintf(c.out, "[%s] %s\n", ts, msg.Content)
	default:
		fmt.Fprintf(c.out, "[%s] %s: %s\n", ts, senderColor.Sprint(msg.Sender), msg.Content)
	}
}

func (c *Client) prompt() {
	promptColor.Fprint(c.out, "> ")
}
