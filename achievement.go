package main

// AchievementDef describes one unlockable achievement
type AchievementDef struct {
	ID     string
	Name   string
	Points int
}

var Achievements = []AchievementDef{
	{ID: "first_blood", Name: "First Blood", Points: 100},
	{ID: "killing_spree", Name: "Killing Spree", Points: 200},
}

// CheckAchievements returns achievements newly earned by the killer's
// updated kill count. Each is granted at most once per player.
func CheckAchievements(p *Player) []AchievementDef {
	var unlocked []AchievementDef
	for _, def := range Achievements {
		if p.Achievements[def.ID] {
			continue
		}
		earned := false
		switch def.ID {
		case "first_blood":
			earned = p.Kills == 1
		case "killing_spree":
			earned = p.Kills >= 5
		}
		if earned {
			p.Achievements[def.ID] = true
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}
