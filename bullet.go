package main

import (
	"math"
	"time"
)

const (
	BulletLifetime = 3 * time.Second
	BulletSubsteps = 4    // movement substeps per tick, reduces tunneling
	MuzzleOffset   = 30.0 // spawn distance from the shooter's center
)

// Bullet is one fired shot. OwnerID is a weak reference; the owning
// player may already be gone by the time the bullet resolves.
type Bullet struct {
	ID        string
	OwnerID   string
	Team      Team
	Weapon    Weapon
	X, Y      float64
	Angle     float64
	Speed     float64 // pixels per bullet tick
	Damage    int
	Size      float64
	CreatedAt time.Time
}

// NewBullet spawns a bullet from the shooter's position and facing angle.
// Weapon attributes come from the server-side table, never the client.
func NewBullet(owner *Player, angle float64, now time.Time) *Bullet {
	def := owner.Weapon.Def()
	return &Bullet{
		ID:        GenerateID(4),
		OwnerID:   owner.ID,
		Team:      owner.Team,
		Weapon:    owner.Weapon,
		X:         owner.X + math.Cos(angle)*MuzzleOffset,
		Y:         owner.Y + math.Sin(angle)*MuzzleOffset,
		Angle:     angle,
		Speed:     def.Speed,
		Damage:    def.Damage,
		Size:      def.BulletSize,
		CreatedAt: now,
	}
}

// Expired reports whether the bullet has outlived BulletLifetime
func (b *Bullet) Expired(now time.Time) bool {
	return now.Sub(b.CreatedAt) > BulletLifetime
}

// Advance moves the bullet one tick in small substeps, testing the world
// after each. Returns false if the bullet struck an obstacle; the position
// is then rewound to the pre-tick point.
func (b *Bullet) Advance(world *World) bool {
	oldX, oldY := b.X, b.Y
	stepX := math.Cos(b.Angle) * b.Speed / BulletSubsteps
	stepY := math.Sin(b.Angle) * b.Speed / BulletSubsteps

	for i := 0; i < BulletSubsteps; i++ {
		b.X += stepX
		b.Y += stepY
		if BulletHitsObstacle(b, world) {
			b.X, b.Y = oldX, oldY
			return false
		}
	}
	return true
}

// ToState converts to protocol state
func (b *Bullet) ToState() BulletState {
	return BulletState{
		ID:      b.ID,
		OwnerID: b.OwnerID,
		Team:    b.Team.String(),
		X:       b.X,
		Y:       b.Y,
		Angle:   b.Angle,
		Size:    b.Size,
	}
}
