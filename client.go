package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // move intents alone can run at 60Hz
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	lobbyID    string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authID       int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client; the player id doubles as the connection
// id once the client joins a lobby
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		playerID:   GenerateID(4),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF marker distinguishes binary frames queued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixed with 0xFF so WritePump can distinguish it from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes incoming intents (single-pass decode via
// InEnvelope). A malformed payload never mutates state.
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgMove:
		c.handleMove(env.D)
	case MsgShoot:
		c.handleShoot(env.D)
	case MsgHit:
		c.handleHit(env.D)
	case MsgDied:
		c.handleDied(env.D)
	case MsgAbility:
		c.handleAbility(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	}
}

// game returns the game for the client's current lobby, or nil
func (c *Client) game() *Game {
	if c.lobbyID == "" {
		return nil
	}
	lobby := c.hub.lobbies.GetLobby(c.lobbyID)
	if lobby == nil {
		return nil
	}
	return lobby.Game
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	lobby := c.hub.lobbies.GetLobby(msg.LobbyID)
	if lobby == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "lobby not found"}})
		return
	}

	// Switching lobbies leaves the old one first
	if c.lobbyID != "" {
		c.hub.lobbies.RemovePlayer(c.lobbyID, c.playerID)
		c.lobbyID = ""
	}

	if lobby.Game.Join(c.playerID, msg, c.authID) == nil {
		if lobby.Game.Stopped() {
			// Lost the race against the lobby's teardown
			c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "lobby not found"}})
		}
		// Missing team or full lobby: no error frame is sent
		return
	}
	c.lobbyID = lobby.ID
	lobby.Game.SetClient(c.playerID, c)

	info, ok := lobby.Game.PlayerInfo(c.playerID)
	if !ok {
		return
	}
	c.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{
		ID:      c.playerID,
		LobbyID: lobby.ID,
		X:       info.X,
		Y:       info.Y,
		Team:    info.Team,
	}})
	if data := lobby.Game.SnapshotBytes(); data != nil {
		c.SendBinary(data)
	}
	lobby.Game.AnnounceJoin(c.playerID)
}

func (c *Client) handleMove(data json.RawMessage) {
	g := c.game()
	if g == nil {
		return
	}
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	g.HandleMove(c.playerID, msg)
}

func (c *Client) handleShoot(data json.RawMessage) {
	g := c.game()
	if g == nil {
		return
	}
	var msg ShootMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	g.HandleShoot(c.playerID, msg)
}

func (c *Client) handleHit(data json.RawMessage) {
	g := c.game()
	if g == nil {
		return
	}
	var msg HitMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	g.HandleHitReport(msg)
}

func (c *Client) handleDied(data json.RawMessage) {
	g := c.game()
	if g == nil {
		return
	}
	var msg DiedMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	g.HandleDeathReport(msg)
}

func (c *Client) handleAbility(data json.RawMessage) {
	g := c.game()
	if g == nil {
		return
	}
	var msg AbilityMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	g.HandleAbility(c.playerID, msg.Name)
}

func (c *Client) handleLeave() {
	if c.lobbyID != "" {
		c.hub.lobbies.RemovePlayer(c.lobbyID, c.playerID)
		c.lobbyID = ""
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgLobbies, Data: c.hub.lobbies.ListLobbies()})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.LobbyName
	if name == "" {
		name = "Arena"
	}
	if len(name) > 30 {
		name = name[:30]
	}
	lobby := c.hub.lobbies.CreateLobby(name)
	if lobby == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "too many active lobbies"}})
		return
	}
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"lid": lobby.ID}})
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	lobby := c.hub.lobbies.GetLobby(msg.LobbyID)
	if lobby == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{LobbyID: msg.LobbyID, Exists: false}})
		return
	}
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{
		LobbyID: lobby.ID,
		Exists:  true,
		Name:    lobby.Name,
		Players: lobby.Game.PlayerCount(),
	}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.authID = id
	c.authUsername = msg.Username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.authID = id
	c.authUsername = msg.Username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "invalid token"}})
		return
	}
	c.authID = id
	c.authUsername = username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: msg.Token, Username: username, PlayerID: id}})
}

func (c *Client) handleProfile() {
	if c.authID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	acct, ok := c.hub.accounts.Stats(c.authID)
	if !ok {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "profile not found"}})
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username: acct.Username,
		Kills:    acct.Kills,
		Deaths:   acct.Deaths,
	}})
}
