package main

import "time"

const (
	PlayerMaxHealth = 100
	PlayerHalfSize  = 15.0 // half of the 30px sprite, used for wall tests
	PlayerHitRadius = 20.0 // fixed circular hit radius for bullets
	KillScore       = 10
	RespawnDelay    = 3 * time.Second
	StaleTimeout    = 10 * time.Second
)

// Player is one connected session's avatar. Owned exclusively by the Game
// that created it; all mutation happens under the game lock.
type Player struct {
	ID     string
	Name   string
	Team   Team
	X, Y   float64
	Angle  float64
	Health int
	Score  int
	Kills  int
	Color  string

	Weapon Weapon
	Ammo   map[Weapon]int

	LobbyID    string
	LastUpdate time.Time
	LastShot   time.Time
	RespawnAt  time.Time // zero while alive

	// Ability name -> earliest next use
	AbilityReady map[string]time.Time

	// Granted achievement ids, at most once each
	Achievements map[string]bool

	// 0 = guest; links kills/deaths to an account's lifetime stats
	AuthID int64
}

// NewPlayer creates a player at a spawn point of the requested team
func NewPlayer(id, name string, team Team, now time.Time) *Player {
	sp := SpawnPointFor(team)
	return &Player{
		ID:           id,
		Name:         name,
		Team:         team,
		X:            sp.X,
		Y:            sp.Y,
		Health:       PlayerMaxHealth,
		Weapon:       WeaponPistol,
		Ammo:         StartingAmmo(),
		LastUpdate:   now,
		AbilityReady: make(map[string]time.Time),
		Achievements: make(map[string]bool),
	}
}

// Alive reports whether the player can act and be hit
func (p *Player) Alive() bool {
	return p.Health > 0
}

// Stale reports whether the player has gone silent past the reap threshold
func (p *Player) Stale(now time.Time) bool {
	return now.Sub(p.LastUpdate) > StaleTimeout
}

// CanFire checks reload cooldown and ammo for the current weapon
func (p *Player) CanFire(now time.Time) bool {
	if !p.Alive() {
		return false
	}
	if now.Sub(p.LastShot) < p.Weapon.Def().Reload {
		return false
	}
	ammo := p.Ammo[p.Weapon]
	return ammo == AmmoUnlimited || ammo > 0
}

// ConsumeShot spends one round and starts the reload cooldown
func (p *Player) ConsumeShot(now time.Time) {
	p.LastShot = now
	if p.Ammo[p.Weapon] != AmmoUnlimited {
		p.Ammo[p.Weapon]--
	}
}

// Respawn restores full health at a fresh team spawn point. Score, ammo
// and achievements survive the respawn.
func (p *Player) Respawn() {
	sp := SpawnPointFor(p.Team)
	p.X = sp.X
	p.Y = sp.Y
	p.Health = PlayerMaxHealth
	p.RespawnAt = time.Time{}
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:     p.ID,
		Name:   p.Name,
		Team:   p.Team.String(),
		X:      p.X,
		Y:      p.Y,
		Angle:  p.Angle,
		Health: p.Health,
		Score:  p.Score,
		Weapon: p.Weapon.String(),
		Color:  p.Color,
	}
}
