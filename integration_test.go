package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, t.TempDir()))
	t.Cleanup(func() {
		srv.Close()
		hub.lobbies.Stop()
		hub.metrics.Stop()
	})
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	env := InEnvelope{T: msgType, D: raw}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntilType reads frames until a text envelope of the wanted type
// arrives, skipping everything else
func readUntilType(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		frameType, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read while waiting for %q: %v", want, err)
		}
		if frameType != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad envelope: %s", raw)
		}
		if env.T == want {
			return env.D
		}
	}
	t.Fatalf("no %q message arrived", want)
	return nil
}

// readBinary reads frames until a binary snapshot arrives
func readBinary(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		frameType, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read while waiting for binary: %v", err)
		}
		if frameType == websocket.BinaryMessage {
			return raw
		}
	}
	t.Fatal("no binary frame arrived")
	return nil
}

func TestJoinFlowAndSnapshot(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgJoin, JoinMsg{Name: "Alice", Team: "red"})

	var joined JoinedMsg
	if err := json.Unmarshal(readUntilType(t, conn, MsgJoined), &joined); err != nil {
		t.Fatalf("joined payload: %v", err)
	}
	if joined.ID == "" || joined.Team != "red" {
		t.Errorf("unexpected joined payload: %+v", joined)
	}

	state, err := decodeSnapshot(readBinary(t, conn))
	if err != nil {
		t.Fatalf("snapshot decode: %v", err)
	}
	if len(state.Players) != 1 || state.Players[0].ID != joined.ID {
		t.Errorf("snapshot players: %+v", state.Players)
	}
	if len(state.Obstacles) == 0 {
		t.Error("snapshot must carry the map geometry")
	}
}

func TestPeerSeesJoinShootAndState(t *testing.T) {
	srv, _ := startTestServer(t)

	alice := dialWS(t, srv)
	sendMsg(t, alice, MsgJoin, JoinMsg{Name: "Alice", Team: "red"})
	readUntilType(t, alice, MsgJoined)

	bob := dialWS(t, srv)
	sendMsg(t, bob, MsgJoin, JoinMsg{Name: "Bob", Team: "blue"})
	readUntilType(t, bob, MsgJoined)

	var peer PlayerState
	if err := json.Unmarshal(readUntilType(t, alice, MsgPlayerJoined), &peer); err != nil {
		t.Fatalf("playerJoined payload: %v", err)
	}
	if peer.Name != "Bob" || peer.Team != "blue" {
		t.Errorf("unexpected peer: %+v", peer)
	}

	sendMsg(t, bob, MsgShoot, ShootMsg{Angle: 0})
	var bullet BulletState
	if err := json.Unmarshal(readUntilType(t, alice, MsgNewBullet), &bullet); err != nil {
		t.Fatalf("newBullet payload: %v", err)
	}
	if bullet.Team != "blue" {
		t.Errorf("bullet attribution: %+v", bullet)
	}

	// The 1s reconcile cycle pushes a full binary snapshot to everyone
	state, err := decodeSnapshot(readBinary(t, alice))
	if err != nil {
		t.Fatalf("snapshot decode: %v", err)
	}
	if len(state.Players) != 2 {
		t.Errorf("expected 2 players in the resync, got %d", len(state.Players))
	}
}

func TestLobbyListCreateCheck(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgCreate, CreateMsg{LobbyName: "Duel Pit"})
	var created map[string]string
	if err := json.Unmarshal(readUntilType(t, conn, MsgCreated), &created); err != nil {
		t.Fatalf("created payload: %v", err)
	}
	if created["lid"] == "" {
		t.Fatal("created lobby id missing")
	}

	sendMsg(t, conn, MsgList, struct{}{})
	var lobbies []LobbyInfo
	if err := json.Unmarshal(readUntilType(t, conn, MsgLobbies), &lobbies); err != nil {
		t.Fatalf("lobbies payload: %v", err)
	}
	if len(lobbies) != 2 {
		t.Errorf("expected default + created, got %d", len(lobbies))
	}

	sendMsg(t, conn, MsgCheck, CheckMsg{LobbyID: created["lid"]})
	var checked CheckedMsg
	if err := json.Unmarshal(readUntilType(t, conn, MsgChecked), &checked); err != nil {
		t.Fatalf("checked payload: %v", err)
	}
	if !checked.Exists || checked.Name != "Duel Pit" {
		t.Errorf("unexpected check result: %+v", checked)
	}

	sendMsg(t, conn, MsgCheck, CheckMsg{LobbyID: "no-such-lobby"})
	if err := json.Unmarshal(readUntilType(t, conn, MsgChecked), &checked); err != nil {
		t.Fatalf("checked payload: %v", err)
	}
	if checked.Exists {
		t.Error("unknown lobby must report missing")
	}
}

func TestSwitchingLobbiesLeavesTheOld(t *testing.T) {
	srv, hub := startTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgJoin, JoinMsg{Name: "Alice", Team: "red"})
	readUntilType(t, conn, MsgJoined)
	if hub.lobbies.DefaultLobby().Game.PlayerCount() != 1 {
		t.Fatal("player missing from the default lobby")
	}

	sendMsg(t, conn, MsgCreate, CreateMsg{LobbyName: "Side Arena"})
	var created map[string]string
	if err := json.Unmarshal(readUntilType(t, conn, MsgCreated), &created); err != nil {
		t.Fatalf("created payload: %v", err)
	}

	sendMsg(t, conn, MsgJoin, JoinMsg{Name: "Alice", Team: "red", LobbyID: created["lid"]})
	var joined JoinedMsg
	if err := json.Unmarshal(readUntilType(t, conn, MsgJoined), &joined); err != nil {
		t.Fatalf("joined payload: %v", err)
	}
	if joined.LobbyID != created["lid"] {
		t.Fatalf("joined the wrong lobby: %+v", joined)
	}

	// The old membership is dropped during the switch, not left for the
	// stale sweep
	if n := hub.lobbies.DefaultLobby().Game.PlayerCount(); n != 0 {
		t.Errorf("old lobby still holds %d player(s)", n)
	}
}

func TestJoinUnknownLobbyErrors(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgJoin, JoinMsg{Name: "Alice", Team: "red", LobbyID: "no-such-lobby"})
	var errMsg ErrorMsg
	if err := json.Unmarshal(readUntilType(t, conn, MsgError), &errMsg); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if errMsg.Msg != "lobby not found" {
		t.Errorf("unexpected error: %+v", errMsg)
	}
}

func TestRegisterLoginProfileOverWS(t *testing.T) {
	srv, _ := startTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgRegister, RegisterMsg{Username: "alice", Password: "secret1"})
	var ok AuthOKMsg
	if err := json.Unmarshal(readUntilType(t, conn, MsgAuthOK), &ok); err != nil {
		t.Fatalf("authOk payload: %v", err)
	}
	if ok.Token == "" || ok.Username != "alice" {
		t.Errorf("unexpected authOk: %+v", ok)
	}

	sendMsg(t, conn, MsgProfile, struct{}{})
	var profile ProfileDataMsg
	if err := json.Unmarshal(readUntilType(t, conn, MsgProfileData), &profile); err != nil {
		t.Fatalf("profile payload: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	// A token from this process validates on a second connection
	conn2 := dialWS(t, srv)
	sendMsg(t, conn2, MsgAuth, AuthMsg{Token: ok.Token})
	if err := json.Unmarshal(readUntilType(t, conn2, MsgAuthOK), &ok); err != nil {
		t.Fatalf("authOk payload: %v", err)
	}
	if ok.Username != "alice" {
		t.Errorf("token auth returned %+v", ok)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := startTestServer(t)

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var snap MetricsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.ActiveLobbies < 1 {
		t.Errorf("default lobby missing from gauges: %+v", snap)
	}
}

func TestQREndpoint(t *testing.T) {
	srv, hub := startTestServer(t)

	resp, err := http.Get(srv.URL + "/qr/" + hub.lobbies.DefaultLobby().ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type %q", ct)
	}

	resp2, err := http.Get(srv.URL + "/qr/no-such-lobby")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown lobby should 404, got %d", resp2.StatusCode)
	}
}

func TestConnectionLimitPerIP(t *testing.T) {
	srv, hub := startTestServer(t)

	conns := make([]*websocket.Conn, 0, maxConnsPerIP)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	for i := 0; i < maxConnsPerIP; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conns = append(conns, conn)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Error("connection over the per-address limit must be refused")
	} else if resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}

	if hub.TotalConns() != maxConnsPerIP {
		t.Errorf("tracked %d connections, want %d", hub.TotalConns(), maxConnsPerIP)
	}
}
