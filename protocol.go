package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgMove     = "move"
	MsgShoot    = "shoot"
	MsgHit      = "hit"
	MsgDied     = "died"
	MsgAbility  = "ability"
	MsgLeave    = "leave"
	MsgCreate   = "create" // create lobby
	MsgList     = "list"   // list lobbies
	MsgCheck    = "check"  // check if lobby exists
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth"
	MsgProfile  = "profile"
)

// Server -> Client message types
const (
	MsgState           = "gameState"
	MsgJoined          = "joined"
	MsgPlayerJoined    = "playerJoined"
	MsgPlayerMoved     = "playerMoved"
	MsgPlayerLeft      = "playerLeft"
	MsgNewBullet       = "newBullet"
	MsgBullets         = "bullets"
	MsgPlayerHit       = "playerHit"
	MsgPlayerDied      = "playerDied"
	MsgPlayerRespawned = "playerRespawned"
	MsgTeamScoreUpdate = "teamScoreUpdate"
	MsgUpdateScore     = "updateScore"
	MsgPowerUpSpawned  = "powerUpSpawned"
	MsgMapEvent        = "mapEvent"
	MsgAbilityUsed     = "abilityUsed"
	MsgAchievement     = "achievement"
	MsgTeamBalance     = "teamBalance"
	MsgLobbies         = "lobbies"
	MsgCreated         = "created"
	MsgChecked         = "checked"
	MsgError           = "error"
	MsgAuthOK          = "authOk"
	MsgProfileData     = "profileData"
)

// Envelope wraps all outgoing text messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages. json.RawMessage avoids
// double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg registers a player in a lobby. The server ignores any
// client-proposed position and assigns a team spawn point itself.
type JoinMsg struct {
	Name    string `json:"name"`
	Team    string `json:"team"`
	Color   string `json:"color"`
	LobbyID string `json:"lid,omitempty"` // empty = default lobby
}

// MoveMsg carries a position/facing update. Health and score fields sent
// by legacy clients are ignored server-side.
type MoveMsg struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
	Weapon string  `json:"weapon,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// ShootMsg requests a shot. Only the angle is trusted; damage, speed and
// size come from the server-side weapon table.
type ShootMsg struct {
	Angle  float64 `json:"angle"`
	Weapon string  `json:"weapon,omitempty"`
}

// HitMsg is a client hit-report
type HitMsg struct {
	TargetID  string `json:"targetId"`
	ShooterID string `json:"shooterId"`
	Damage    int    `json:"damage"`
}

// DiedMsg is a client death-report crediting a killer
type DiedMsg struct {
	KillerID string `json:"killerId"`
}

// AbilityMsg requests a team ability use
type AbilityMsg struct {
	Name string `json:"name"`
}

// CreateMsg requests a new lobby
type CreateMsg struct {
	Name      string `json:"name"`
	LobbyName string `json:"lname"`
}

// CheckMsg asks whether a lobby exists
type CheckMsg struct {
	LobbyID string `json:"lid"`
}

// RegisterMsg / LoginMsg / AuthMsg are the account intents
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthMsg struct {
	Token string `json:"token"`
}

// PlayerState is the per-player wire representation
type PlayerState struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"name" msgpack:"n"`
	Team   string  `json:"team" msgpack:"t"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Angle  float64 `json:"angle" msgpack:"a"`
	Health int     `json:"health" msgpack:"hp"`
	Score  int     `json:"score" msgpack:"sc"`
	Weapon string  `json:"weapon" msgpack:"w"`
	Color  string  `json:"color" msgpack:"c"`
}

// BulletState is the per-bullet wire representation
type BulletState struct {
	ID      string  `json:"id" msgpack:"id"`
	OwnerID string  `json:"playerId" msgpack:"o"`
	Team    string  `json:"team" msgpack:"t"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Angle   float64 `json:"angle" msgpack:"a"`
	Size    float64 `json:"size" msgpack:"s"`
}

// PowerUpState is the per-pickup wire representation
type PowerUpState struct {
	ID       string  `json:"id" msgpack:"id"`
	Type     string  `json:"type" msgpack:"t"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Color    string  `json:"color" msgpack:"c"`
	Duration int64   `json:"duration" msgpack:"d"` // ms
}

// TeamScores are the two monotone counters
type TeamScores struct {
	Red  int `json:"red" msgpack:"r"`
	Blue int `json:"blue" msgpack:"b"`
}

// GameState is the full lobby snapshot sent by the reconciliation cycle
// (binary msgpack) and to a freshly joined player
type GameState struct {
	Players    []PlayerState  `json:"players" msgpack:"p"`
	Bullets    []BulletState  `json:"bullets" msgpack:"pr"`
	PowerUps   []PowerUpState `json:"powerUps" msgpack:"pk"`
	TeamScores TeamScores     `json:"teamScores" msgpack:"ts"`
	Obstacles  []Obstacle     `json:"obstacles" msgpack:"ob"`
}

// JoinedMsg confirms a join and tells the client its id and spawn
type JoinedMsg struct {
	ID      string  `json:"id"`
	LobbyID string  `json:"lid"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Team    string  `json:"team"`
}

// HitEvent reports damage to a player
type HitEvent struct {
	TargetID  string `json:"targetId"`
	ShooterID string `json:"shooterId,omitempty"`
	Health    int    `json:"health"`
}

// DeathEvent is emitted exactly once per death
type DeathEvent struct {
	KillerID    string     `json:"killerId"`
	VictimID    string     `json:"victimId"`
	KillerTeam  string     `json:"killerTeam"`
	KillerScore int        `json:"killerScore"`
	TeamScores  TeamScores `json:"teamScores"`
}

// RespawnEvent announces a player returning to play
type RespawnEvent struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
}

// ScoreEvent is a per-player score update
type ScoreEvent struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// MapEventMsg announces a global map modifier
type MapEventMsg struct {
	Type      string `json:"type"`
	Effect    string `json:"effect"`
	Duration  int64  `json:"duration"` // ms
	StartTime int64  `json:"startTime"`
}

// AbilityEvent announces an ability use to the lobby
type AbilityEvent struct {
	PlayerID string  `json:"playerId"`
	Ability  string  `json:"ability"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// AchievementEvent grants an achievement
type AchievementEvent struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}

// BalanceEvent is the team imbalance advisory
type BalanceEvent struct {
	RedCount  int `json:"redCount"`
	BlueCount int `json:"blueCount"`
}

// LobbyInfo is used in the lobby list
type LobbyInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// CheckedMsg is the response to a lobby check
type CheckedMsg struct {
	LobbyID string `json:"lid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// AuthOKMsg confirms register/login/auth
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg returns lifetime account stats
type ProfileDataMsg struct {
	Username string `json:"username"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
}
