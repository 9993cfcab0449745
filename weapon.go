package main

import "time"

// Weapon identifies a weapon type
type Weapon int

const (
	WeaponPistol  Weapon = 0
	WeaponRifle   Weapon = 1
	WeaponShotgun Weapon = 2
)

// AmmoUnlimited marks a weapon that never runs dry
const AmmoUnlimited = -1

// WeaponDef holds the fixed attributes of a weapon type.
// Speed is in pixels per bullet tick, matching the client's units.
type WeaponDef struct {
	Name       string
	Damage     int
	Speed      float64
	BulletSize float64
	Reload     time.Duration
	Ammo       int     // starting ammo, AmmoUnlimited for pistol
	Pellets    int     // bullets spawned per shot
	Spread     float64 // radians between pellets
}

var weaponDefs = map[Weapon]WeaponDef{
	WeaponPistol: {
		Name:       "pistol",
		Damage:     10,
		Speed:      15,
		BulletSize: 5,
		Reload:     250 * time.Millisecond,
		Ammo:       AmmoUnlimited,
		Pellets:    1,
	},
	WeaponRifle: {
		Name:       "rifle",
		Damage:     15,
		Speed:      20,
		BulletSize: 4,
		Reload:     150 * time.Millisecond,
		Ammo:       90,
		Pellets:    1,
	},
	WeaponShotgun: {
		Name:       "shotgun",
		Damage:     8,
		Speed:      12,
		BulletSize: 3,
		Reload:     800 * time.Millisecond,
		Ammo:       24,
		Pellets:    5,
		Spread:     0.1,
	},
}

// MaxWeaponDamage caps client-reported hit damage
const MaxWeaponDamage = 15

func (w Weapon) Def() WeaponDef {
	return weaponDefs[w]
}

func (w Weapon) String() string {
	return weaponDefs[w].Name
}

// ParseWeapon converts a wire weapon name, defaulting to the pistol
func ParseWeapon(s string) Weapon {
	switch s {
	case "rifle":
		return WeaponRifle
	case "shotgun":
		return WeaponShotgun
	default:
		return WeaponPistol
	}
}

// StartingAmmo returns a fresh per-weapon ammo table
func StartingAmmo() map[Weapon]int {
	ammo := make(map[Weapon]int, len(weaponDefs))
	for w, def := range weaponDefs {
		ammo[w] = def.Ammo
	}
	return ammo
}
