package main

import (
	"log"
	"sort"
	"sync"
	"time"
)

const (
	TickRate     = 60 // bullet physics ticks per second
	TickDuration = time.Second / TickRate

	SnapshotInterval = time.Second      // reconciliation / stale reap
	PowerUpInterval  = 15 * time.Second // power-up spawn attempts
	MapEventInterval = 60 * time.Second // global event announcements

	maxBulletsPerLobby = 500
	maxPlayersPerLobby = 20
	maxNameLen         = 16
)

// Broadcaster is the outbound half of a connected client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game is the authoritative state of one lobby: the player registry, live
// bullets, power-ups, and team scores. All mutation happens under mu;
// each cycle callback and each inbound handler runs to completion before
// another can touch the registry.
type Game struct {
	mu         sync.RWMutex
	lobbyID    string
	world      *World
	players    map[string]*Player
	bullets    []*Bullet // creation order, which fixes hit resolution order
	powerUps   []*PowerUp
	teamScores TeamScores
	clients    map[string]Broadcaster // playerID -> client

	accounts *AccountStore
	metrics  *Metrics

	stopped bool
	stop    chan struct{}
}

// NewGame creates a game for one lobby
func NewGame(lobbyID string, accounts *AccountStore, metrics *Metrics) *Game {
	return &Game{
		lobbyID:  lobbyID,
		world:    DefaultWorld(),
		players:  make(map[string]*Player),
		clients:  make(map[string]Broadcaster),
		accounts: accounts,
		metrics:  metrics,
		stop:     make(chan struct{}),
	}
}

// Run drives the four fixed-rate cycles from a single goroutine, so every
// callback runs to completion before the next one starts
func (g *Game) Run() {
	bullets := time.NewTicker(TickDuration)
	reconcile := time.NewTicker(SnapshotInterval)
	powerUps := time.NewTicker(PowerUpInterval)
	mapEvents := time.NewTicker(MapEventInterval)
	defer func() {
		bullets.Stop()
		reconcile.Stop()
		powerUps.Stop()
		mapEvents.Stop()
	}()

	for {
		select {
		case <-bullets.C:
			g.runCycle("bullet", g.bulletTick)
		case <-reconcile.C:
			g.runCycle("reconcile", g.reconcile)
		case <-powerUps.C:
			g.runCycle("powerup", g.spawnPowerUp)
		case <-mapEvents.C:
			g.runCycle("mapevent", g.announceMapEvent)
		case <-g.stop:
			return
		}
	}
}

// runCycle guards a cycle callback: a panic is logged and the scheduler
// keeps going
func (g *Game) runCycle(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s cycle panic in lobby %s: %v", name, g.lobbyID, r)
		}
	}()
	fn()
}

// Stop terminates the game loop and refuses further joins. Idempotent.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Game) stopLocked() {
	if !g.stopped {
		g.stopped = true
		close(g.stop)
	}
}

// StopIfEmpty stops the game only while the registry is empty, in one
// critical section, so a concurrent Join either lands before the check or
// fails against the stopped flag. Reports whether the game was stopped.
func (g *Game) StopIfEmpty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) > 0 {
		return false
	}
	g.stopLocked()
	return true
}

// Join creates a player for a connection id. Returns nil when the game is
// stopped, the lobby is full, or no valid team was supplied. The account
// id is recorded inside the critical section; callers must not touch the
// returned Player's fields once the game loop is running.
func (g *Game) Join(id string, msg JoinMsg, authID int64) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return nil
	}
	if len(g.players) >= maxPlayersPerLobby {
		return nil
	}
	team := ParseTeam(msg.Team)
	if team == TeamNone {
		return nil
	}
	name := msg.Name
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	p := NewPlayer(id, name, team, time.Now())
	p.Color = msg.Color
	p.LobbyID = g.lobbyID
	p.AuthID = authID
	g.players[id] = p
	g.metrics.Track(EvtJoin)
	return p
}

// PlayerInfo returns a copy of a player's wire state
func (g *Game) PlayerInfo(id string) (PlayerState, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.players[id]
	if !ok {
		return PlayerState{}, false
	}
	return p.ToState(), true
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// AnnounceJoin tells the rest of the lobby about a new player and
// recomputes the team balance
func (g *Game) AnnounceJoin(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[playerID]
	if !ok {
		return
	}
	g.broadcastExceptLocked(playerID, Envelope{T: MsgPlayerJoined, Data: p.ToState()})
	g.checkBalanceLocked()
}

// RemovePlayer drops a player from the registry. Bullets the player
// already fired stay live and can still score kills for the team until
// they expire.
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[id]; !ok {
		return
	}
	delete(g.players, id)
	delete(g.clients, id)
	g.metrics.Track(EvtLeave)
	g.broadcastMsgLocked(Envelope{T: MsgPlayerLeft, Data: id})
	g.checkBalanceLocked()
}

// HandleMove applies a position/facing update. The position is
// re-validated against obstacle geometry server-side; client health and
// score claims are ignored.
func (g *Game) HandleMove(id string, msg MoveMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return
	}
	p.X = Clamp(msg.X, 0, g.world.Width)
	p.Y = Clamp(msg.Y, 0, g.world.Height)
	ResolvePlayerObstacles(p, g.world)
	p.Angle = msg.Angle
	if msg.Weapon != "" {
		p.Weapon = ParseWeapon(msg.Weapon)
	}
	if msg.Color != "" {
		p.Color = msg.Color
	}
	p.LastUpdate = time.Now()

	g.broadcastExceptLocked(id, Envelope{T: MsgPlayerMoved, Data: p.ToState()})
}

// HandleShoot validates a shoot intent and spawns the shot's bullets.
// Weapon stats come from the server-side table; a pellet whose spawn
// point already intersects an obstacle is never added.
func (g *Game) HandleShoot(id string, msg ShootMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return
	}
	now := time.Now()
	if msg.Weapon != "" {
		p.Weapon = ParseWeapon(msg.Weapon)
	}
	if !p.CanFire(now) {
		return
	}

	def := p.Weapon.Def()
	base := msg.Angle - def.Spread*float64(def.Pellets-1)/2
	fired := false
	for i := 0; i < def.Pellets; i++ {
		if len(g.bullets) >= maxBulletsPerLobby {
			break
		}
		b := NewBullet(p, base+def.Spread*float64(i), now)
		if BulletHitsObstacle(b, g.world) {
			continue
		}
		g.bullets = append(g.bullets, b)
		fired = true
		g.broadcastMsgLocked(Envelope{T: MsgNewBullet, Data: b.ToState()})
	}
	if fired {
		p.ConsumeShot(now)
		p.LastUpdate = now
		g.metrics.Track(EvtShot)
	}
}

// HandleHitReport applies a client hit-report. Damage is clamped to the
// largest weapon damage; a report naming an unknown target is a no-op.
func (g *Game) HandleHitReport(msg HitMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	target, ok := g.players[msg.TargetID]
	if !ok {
		return
	}
	dmg := ClampInt(msg.Damage, 0, MaxWeaponDamage)
	g.ApplyDamage(target, dmg, msg.ShooterID, time.Now())
}

// HandleDeathReport credits a killer named by the client. A report for an
// already-removed killer is a no-op.
func (g *Game) HandleDeathReport(msg DiedMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()
	killer, ok := g.players[msg.KillerID]
	if !ok {
		return
	}
	killer.Score += KillScore
	g.addTeamScoreLocked(killer.Team)
	g.broadcastMsgLocked(Envelope{T: MsgTeamScoreUpdate, Data: g.teamScores})
	g.broadcastMsgLocked(Envelope{T: MsgUpdateScore, Data: ScoreEvent{
		PlayerID: killer.ID,
		Score:    killer.Score,
	}})
}

// HandleAbility validates an ability use against the player's team table
// and cooldown, then announces it. The effect itself is client-side.
func (g *Game) HandleAbility(id string, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok || !p.Alive() {
		return
	}
	def, ok := AbilityFor(p.Team, name)
	if !ok {
		return
	}
	now := time.Now()
	if !CanUseAbility(p, name, now) {
		return
	}
	MarkAbilityUsed(p, def, now)
	g.broadcastMsgLocked(Envelope{T: MsgAbilityUsed, Data: AbilityEvent{
		PlayerID: p.ID,
		Ability:  def.Name,
		X:        p.X,
		Y:        p.Y,
	}})
}

// Stopped reports whether the game loop has been shut down
func (g *Game) Stopped() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stopped
}

// HasPlayer reports whether a player id is registered
func (g *Game) HasPlayer(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.players[id]
	return ok
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// Snapshot returns a full copy of the lobby state, safe to use outside
// the game lock
func (g *Game) Snapshot() GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.buildSnapshot()
}

// SnapshotBytes returns the binary wire form of the current snapshot
func (g *Game) SnapshotBytes() []byte {
	data, err := encodeSnapshot(g.Snapshot())
	if err != nil {
		log.Printf("snapshot encode: %v", err)
		return nil
	}
	return data
}

// bulletTick is the 60 Hz cycle: respawns due, then bullet movement with
// per-substep obstacle tests, then first-match player hits, then the
// bullet list broadcast
func (g *Game) bulletTick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()

	for _, p := range g.players {
		if !p.Alive() && !p.RespawnAt.IsZero() && !now.Before(p.RespawnAt) {
			p.Respawn()
			g.broadcastMsgLocked(Envelope{T: MsgPlayerRespawned, Data: RespawnEvent{
				ID:     p.ID,
				X:      p.X,
				Y:      p.Y,
				Health: p.Health,
			}})
		}
	}

	// Stable target order so "first match" is well defined per tick
	targets := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		targets = append(targets, p)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })

	kept := g.bullets[:0]
	for _, b := range g.bullets {
		if b.Expired(now) {
			continue
		}
		if !b.Advance(g.world) {
			continue // struck an obstacle
		}
		if g.world.OutsideMargin(b.X, b.Y) {
			continue
		}
		consumed := false
		for _, p := range targets {
			if p.ID == b.OwnerID || p.Team == b.Team || !p.Alive() {
				continue
			}
			if BulletHitsPlayer(b, p) {
				g.ApplyDamage(p, b.Damage, b.OwnerID, now)
				consumed = true
				break // one bullet hits at most one player
			}
		}
		if !consumed {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(g.bullets); i++ {
		g.bullets[i] = nil
	}
	g.bullets = kept

	states := make([]BulletState, len(g.bullets))
	for i, b := range g.bullets {
		states[i] = b.ToState()
	}
	g.broadcastMsgLocked(Envelope{T: MsgBullets, Data: states})
}

// reconcile is the 1 Hz cycle: reap stale players, prune expired
// power-ups, and push the full snapshot to every lobby member. This is
// the idempotent resync that corrects any drift from the delta events.
func (g *Game) reconcile() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()

	for id, p := range g.players {
		if p.Stale(now) {
			delete(g.players, id)
			delete(g.clients, id)
			g.metrics.Track(EvtLeave)
			g.broadcastMsgLocked(Envelope{T: MsgPlayerLeft, Data: id})
			g.checkBalanceLocked()
		}
	}

	kept := g.powerUps[:0]
	for _, pu := range g.powerUps {
		if !pu.Expired(now) {
			kept = append(kept, pu)
		}
	}
	g.powerUps = kept

	data, err := encodeSnapshot(g.buildSnapshot())
	if err != nil {
		log.Printf("snapshot encode: %v", err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// spawnPowerUp is the 15 s cycle: one spawn attempt while under the cap
func (g *Game) spawnPowerUp() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.powerUps) >= MaxPowerUps {
		return
	}
	pu := NewPowerUp(g.world, time.Now())
	if pu == nil {
		return // rolled a position inside an obstacle, try next interval
	}
	g.powerUps = append(g.powerUps, pu)
	g.broadcastMsgLocked(Envelope{T: MsgPowerUpSpawned, Data: pu.ToState()})
}

// announceMapEvent is the 60 s cycle: a purely informational broadcast
func (g *Game) announceMapEvent() {
	g.mu.RLock()
	defer g.mu.RUnlock()
	def := randomMapEvent().Def()
	g.broadcastMsgLocked(Envelope{T: MsgMapEvent, Data: MapEventMsg{
		Type:      def.Name,
		Effect:    def.Effect,
		Duration:  def.Duration.Milliseconds(),
		StartTime: time.Now().UnixMilli(),
	}})
}

// checkBalanceLocked emits the advisory when team populations drift too
// far apart. Observational only, nobody is reassigned.
func (g *Game) checkBalanceLocked() {
	red, blue := TeamCounts(g.players)
	if TeamsImbalanced(red, blue) {
		g.broadcastMsgLocked(Envelope{T: MsgTeamBalance, Data: BalanceEvent{
			RedCount:  red,
			BlueCount: blue,
		}})
	}
}

// broadcastMsgLocked sends a message to every client in the lobby
func (g *Game) broadcastMsgLocked(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}

// broadcastExceptLocked sends a message to everyone but one player
func (g *Game) broadcastExceptLocked(exceptID string, msg Envelope) {
	for id, client := range g.clients {
		if id == exceptID {
			continue
		}
		client.SendJSON(msg)
	}
}
