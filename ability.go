package main

import "time"

// AbilityDef holds a team ability's fixed attributes. The server enforces
// ownership and cooldown, then broadcasts the use; the visible effect is
// client-side.
type AbilityDef struct {
	Name     string
	Duration time.Duration
	Cooldown time.Duration
	Amount   int     // heal amount / trap damage
	Radius   float64 // heal radius
}

var teamAbilities = map[Team]map[string]AbilityDef{
	TeamRed: {
		"smoke": {Name: "smoke", Duration: 5 * time.Second, Cooldown: 15 * time.Second},
		"heal":  {Name: "heal", Amount: 30, Radius: 100, Cooldown: 20 * time.Second},
	},
	TeamBlue: {
		"sprint": {Name: "sprint", Duration: 3 * time.Second, Cooldown: 15 * time.Second},
		"trap":   {Name: "trap", Amount: 30, Duration: 10 * time.Second, Cooldown: 20 * time.Second},
	},
}

// AbilityFor looks up an ability by team and name; ok is false for an
// unknown name or a name belonging to the other team
func AbilityFor(team Team, name string) (AbilityDef, bool) {
	def, ok := teamAbilities[team][name]
	return def, ok
}

// CanUseAbility checks the player's per-ability cooldown
func CanUseAbility(p *Player, name string, now time.Time) bool {
	return !now.Before(p.AbilityReady[name])
}

// MarkAbilityUsed starts the cooldown
func MarkAbilityUsed(p *Player, def AbilityDef, now time.Time) {
	p.AbilityReady[def.Name] = now.Add(def.Cooldown)
}
