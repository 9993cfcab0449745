package main

import "time"

const (
	MaxPowerUps     = 3
	PowerUpLifetime = 30 * time.Second
	PowerUpMargin   = 100.0 // keep spawns away from the map edge
	PowerUpHalfSize = 10.0
)

// PowerUpType identifies a pickup kind
type PowerUpType int

const (
	PowerUpHealth PowerUpType = 0
	PowerUpSpeed  PowerUpType = 1
	PowerUpDamage PowerUpType = 2
	PowerUpShield PowerUpType = 3
)

// PowerUpDef holds the fixed attributes of a pickup kind. The effect
// itself is applied client-side; the server only announces it.
type PowerUpDef struct {
	Name     string
	Color    string
	Duration time.Duration
}

var powerUpDefs = map[PowerUpType]PowerUpDef{
	PowerUpHealth: {Name: "health", Color: "#2ecc71", Duration: 0},
	PowerUpSpeed:  {Name: "speed", Color: "#3498db", Duration: 5 * time.Second},
	PowerUpDamage: {Name: "damage", Color: "#e74c3c", Duration: 8 * time.Second},
	PowerUpShield: {Name: "shield", Color: "#f1c40f", Duration: 4 * time.Second},
}

func (t PowerUpType) Def() PowerUpDef {
	return powerUpDefs[t]
}

func (t PowerUpType) String() string {
	return powerUpDefs[t].Name
}

// randomPowerUpType picks one of the closed set
func randomPowerUpType() PowerUpType {
	return PowerUpType(randIntn(len(powerUpDefs)))
}

// PowerUp is a transient pickup on the map
type PowerUp struct {
	ID        string
	Type      PowerUpType
	X, Y      float64
	CreatedAt time.Time
}

// NewPowerUp rolls a random pickup at a random in-bounds position.
// Returns nil if the rolled position overlaps an obstacle; the spawn
// cycle simply tries again next interval.
func NewPowerUp(world *World, now time.Time) *PowerUp {
	p := &PowerUp{
		ID:        GenerateID(4),
		Type:      randomPowerUpType(),
		X:         PowerUpMargin + randFloat()*(world.Width-2*PowerUpMargin),
		Y:         PowerUpMargin + randFloat()*(world.Height-2*PowerUpMargin),
		CreatedAt: now,
	}
	if PointHitsObstacle(p.X, p.Y, PowerUpHalfSize, world) {
		return nil
	}
	return p
}

// Expired reports whether the pickup should be pruned
func (p *PowerUp) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PowerUpLifetime
}

// ToState converts to protocol state
func (p *PowerUp) ToState() PowerUpState {
	def := p.Type.Def()
	return PowerUpState{
		ID:       p.ID,
		Type:     def.Name,
		X:        p.X,
		Y:        p.Y,
		Color:    def.Color,
		Duration: def.Duration.Milliseconds(),
	}
}
