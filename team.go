package main

// Team identifies one of the two fixed factions
type Team int

const (
	TeamNone Team = 0
	TeamRed  Team = 1
	TeamBlue Team = 2
)

// TeamImbalanceThreshold is how lopsided the lobby may get before an
// advisory is broadcast
const TeamImbalanceThreshold = 2

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "none"
	}
}

// ParseTeam converts a wire team name; TeamNone means invalid/missing
func ParseTeam(s string) Team {
	switch s {
	case "red":
		return TeamRed
	case "blue":
		return TeamBlue
	default:
		return TeamNone
	}
}

// Opposing returns the enemy team
func (t Team) Opposing() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	default:
		return TeamNone
	}
}

// SpawnPoint is a fixed respawn location
type SpawnPoint struct {
	X, Y float64
}

var teamSpawnPoints = map[Team][]SpawnPoint{
	TeamRed: {
		{X: 200, Y: 200},
		{X: 300, Y: 200},
		{X: 200, Y: 300},
	},
	TeamBlue: {
		{X: MapWidth - 200, Y: MapHeight - 200},
		{X: MapWidth - 300, Y: MapHeight - 200},
		{X: MapWidth - 200, Y: MapHeight - 300},
	},
}

// SpawnPointFor picks a random spawn point from the team's set, falling
// back to map center when the set is empty
func SpawnPointFor(team Team) SpawnPoint {
	points := teamSpawnPoints[team]
	if len(points) == 0 {
		return SpawnPoint{X: MapWidth / 2, Y: MapHeight / 2}
	}
	return points[randIntn(len(points))]
}

// TeamCounts tallies the live population of each team
func TeamCounts(players map[string]*Player) (red, blue int) {
	for _, p := range players {
		switch p.Team {
		case TeamRed:
			red++
		case TeamBlue:
			blue++
		}
	}
	return red, blue
}

// TeamsImbalanced reports whether the population difference exceeds the
// advisory threshold
func TeamsImbalanced(red, blue int) bool {
	diff := red - blue
	if diff < 0 {
		diff = -diff
	}
	return diff > TeamImbalanceThreshold
}
