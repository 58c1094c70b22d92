package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Chase-Garrett/songbird/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startGatewayTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := startTestServer(t)
	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebsocket))
	t.Cleanup(ts.Close)
	return srv, ts
}

func dialGateway(t *testing.T, ts *httptest.Server, username string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?username=" + username
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func nextGatewayMessage(t *testing.T, ws *websocket.Conn) protocol.Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.Decode(string(data))
	require.NoError(t, err)
	return msg
}

func TestGatewayRequiresUsername(t *testing.T) {
	_, ts := startGatewayTestServer(t)

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGatewayBridgesWebsocketAndTCPClients(t *testing.T) {
	srv, ts := startGatewayTestServer(t)

	alice := dialTestClient(t, srv)
	alice.join("alice")

	ws := dialGateway(t, ts, "carol")
	welcome := nextGatewayMessage(t, ws)
	require.Equal(t, protocol.KindSystem, welcome.Kind)
	require.Contains(t, welcome.Content, "carol")

	join := alice.next()
	require.Equal(t, protocol.KindJoin, join.Kind)
	require.Equal(t, "carol", join.Sender)
	require.True(t, srv.registry.Contains("carol"))

	// TCP to websocket.
	alice.send("hello carol")
	msg := nextGatewayMessage(t, ws)
	require.Equal(t, protocol.KindText, msg.Kind)
	require.Equal(t, "alice", msg.Sender)
	require.Equal(t, "hello carol", msg.Content)

	// Websocket to TCP.
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hi alice")))
	reply := alice.next()
	require.Equal(t, protocol.KindText, reply.Kind)
	require.Equal(t, "carol", reply.Sender)
	require.Equal(t, "hi alice", reply.Content)
}

func TestGatewayQuitPublishesLeave(t *testing.T) {
	srv, ts := startGatewayTestServer(t)

	monitor := dialTestClient(t, srv)
	monitor.join("monitor")

	ws := dialGateway(t, ts, "carol")
	require.Equal(t, protocol.KindJoin, monitor.next().Kind)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(protocol.QuitCommand)))

	leave := monitor.next()
	require.Equal(t, protocol.KindLeave, leave.Kind)
	require.Equal(t, "carol", leave.Sender)

	require.Eventually(t, func() bool {
		return !srv.registry.Contains("carol")
	}, 2*time.Second, 10*time.Millisecond)
}
