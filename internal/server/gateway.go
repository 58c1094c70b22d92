package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/Chase-Garrett/songbird/internal/protocol"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// startGateway exposes the websocket surface on the configured HTTP
// address. Gateway participants share the hub and registry with TCP ones;
// each websocket text message carries one chat line.
func (s *Server) startGateway() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	s.httpSrv = &http.Server{Addr: s.cfg.HTTPAddr, Handler: mux}
	go func() {
		log.Printf("Websocket gateway listening on %s", s.cfg.HTTPAddr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Gateway error: %v", err)
		}
	}()
}

// handleWebsocket upgrades the request and runs the same join/pump/leave
// lifecycle as a TCP session. The username arrives as a query parameter
// since there is no line-oriented intake phase on this transport.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("Gateway client connected: %s", username)

	g := &gatewaySession{conn: conn, hub: s.hub, registry: s.registry, username: username}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		g.run()
	}()
}

// gatewaySession mirrors the TCP session lifecycle over a websocket
// connection.
type gatewaySession struct {
	conn     *websocket.Conn
	hub      *Hub
	registry *Registry
	username string
}

func (g *gatewaySession) run() {
	defer g.conn.Close()

	g.registry.Insert(g.username, g.conn.UnderlyingConn())
	defer g.registry.Remove(g.username)

	g.broadcast(protocol.NewMessage(g.username, g.username+" joined the chat!", protocol.KindJoin))

	welcome := protocol.NewMessage(
		protocol.SystemSender,
		fmt.Sprintf("Welcome to the chat, %s! Type '%s' to exit.", g.username, protocol.QuitCommand),
		protocol.KindSystem,
	)
	if encoded, err := welcome.Encode(); err == nil {
		if err := g.conn.WriteMessage(websocket.TextMessage, []byte(encoded)); err != nil {
			log.Printf("Error welcoming %s: %v", g.username, err)
		}
	}

	rcv := g.hub.Subscribe()
	go g.writePump(rcv)

	g.readPump()

	g.broadcast(protocol.NewMessage(g.username, g.username+" left the chat!", protocol.KindLeave))
	rcv.Close()

	log.Printf("Gateway client disconnected: %s", g.username)
}

// readPump publishes incoming chat lines until the peer quits or the
// connection drops.
func (g *gatewaySession) readPump() {
	for {
		_, data, err := g.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Printf("Gateway read error from %s: %v", g.username, err)
			}
			return
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		if content == protocol.QuitCommand {
			return
		}
		g.broadcast(protocol.NewMessage(g.username, content, protocol.KindText))
	}
}

// writePump forwards hub records that did not originate here. All writes
// to the websocket happen on this goroutine once the pump starts.
func (g *gatewaySession) writePump(rcv *Receiver) {
	for {
		encoded, err := rcv.Recv()
		switch {
		case err == nil:
		case errors.Is(err, ErrLagged):
			log.Printf("Receiver for %s lagged; continuing", g.username)
			continue
		case errors.Is(err, ErrReceiverClosed):
			return
		default: // ErrHubClosed
			g.conn.WriteMessage(websocket.CloseMessage, []byte{})
			g.conn.Close()
			return
		}

		msg, decodeErr := protocol.Decode(encoded)
		if decodeErr != nil {
			log.Printf("Skipping malformed hub record: %v", decodeErr)
			continue
		}
		if msg.Sender == g.username {
			continue
		}
		if err := g.conn.WriteMessage(websocket.TextMessage, []byte(encoded)); err != nil {
			g.conn.Close()
			return
		}
	}
}

func (g *gatewaySession) broadcast(msg protocol.Message) {
	encoded, err := msg.Encode()
	if err != nil {
		log.Printf("Error encoding %s message: %v", msg.Kind, err)
		return
	}
	g.hub.Publish(encoded)
}
