package main

import (
	"math"
	"testing"
	"time"
)

func testShooter(team Team, x, y float64, w Weapon) *Player {
	p := NewPlayer("s1", "Shooter", team, time.Now())
	p.X, p.Y = x, y
	p.Weapon = w
	return p
}

func TestNewBulletUsesWeaponTable(t *testing.T) {
	now := time.Now()
	p := testShooter(TeamRed, 500, 1000, WeaponRifle)

	b := NewBullet(p, 0, now)
	def := WeaponRifle.Def()
	if b.Damage != def.Damage || b.Speed != def.Speed || b.Size != def.BulletSize {
		t.Errorf("bullet stats %d/%f/%f do not match the rifle table", b.Damage, b.Speed, b.Size)
	}
	if b.X != p.X+MuzzleOffset || b.Y != p.Y {
		t.Errorf("muzzle offset wrong: bullet at (%f,%f)", b.X, b.Y)
	}
	if b.OwnerID != p.ID || b.Team != p.Team {
		t.Error("owner attribution wrong")
	}
}

func TestBulletAdvanceOpenGround(t *testing.T) {
	w := DefaultWorld()
	p := testShooter(TeamRed, 500, 1000, WeaponPistol)
	b := NewBullet(p, 0, time.Now())

	startX := b.X
	if !b.Advance(w) {
		t.Fatal("advance in open ground must succeed")
	}
	if math.Abs(b.X-(startX+b.Speed)) > 1e-9 || b.Y != 1000 {
		t.Errorf("expected x=%f, got (%f,%f)", startX+b.Speed, b.X, b.Y)
	}
}

func TestBulletAdvanceStrikesObstacle(t *testing.T) {
	w := DefaultWorld()
	p := testShooter(TeamRed, 860, 500, WeaponPistol)
	b := NewBullet(p, 0, time.Now()) // spawns at x=890, center block starts at 900

	preX, preY := b.X, b.Y
	if b.Advance(w) {
		t.Fatal("bullet heading into the center block must be stopped")
	}
	if b.X != preX || b.Y != preY {
		t.Error("position must rewind on an obstacle strike")
	}
}

func TestBulletSubstepCatchesThinWall(t *testing.T) {
	// The 20px corridor bars are thinner than a full per-tick move
	w := DefaultWorld()
	p := testShooter(TeamRed, 1000, 320, WeaponRifle)
	p.Angle = math.Pi / 2
	b := NewBullet(p, math.Pi/2, time.Now()) // spawns at y=350 edge, flying down

	if b.Advance(w) {
		t.Error("substeps must catch the 20px bar at y=350")
	}
}

func TestBulletExpired(t *testing.T) {
	now := time.Now()
	p := testShooter(TeamRed, 500, 1000, WeaponPistol)
	b := NewBullet(p, 0, now)

	if b.Expired(now.Add(BulletLifetime - time.Millisecond)) {
		t.Error("bullet expired early")
	}
	if !b.Expired(now.Add(BulletLifetime + time.Millisecond)) {
		t.Error("bullet should expire after its lifetime")
	}
}

func TestOutsideMargin(t *testing.T) {
	w := DefaultWorld()
	cases := []struct {
		x, y float64
		out  bool
	}{
		{1000, 750, false},
		{-10, 750, false}, // inside the margin
		{-60, 750, true},
		{MapWidth + 60, 750, true},
		{1000, MapHeight + 60, true},
	}
	for _, c := range cases {
		if got := w.OutsideMargin(c.x, c.y); got != c.out {
			t.Errorf("OutsideMargin(%f,%f) = %v, want %v", c.x, c.y, got, c.out)
		}
	}
}
