package main

import "time"

// ApplyDamage reduces the victim's health, floored at zero, and emits the
// hit event. A transition to zero health triggers the death flow exactly
// once, because dead players are never offered as targets again until
// they respawn. Caller must hold the game lock.
func (g *Game) ApplyDamage(victim *Player, damage int, shooterID string, now time.Time) {
	if !victim.Alive() || damage <= 0 {
		return
	}
	victim.Health -= damage
	if victim.Health < 0 {
		victim.Health = 0
	}

	g.broadcastMsgLocked(Envelope{T: MsgPlayerHit, Data: HitEvent{
		TargetID:  victim.ID,
		ShooterID: shooterID,
		Health:    victim.Health,
	}})

	if victim.Health == 0 {
		g.handleDeath(victim, shooterID, now)
	}
}

// handleDeath awards kill credit, schedules the respawn, and emits the
// single death event. The killer is resolved by id lookup that tolerates
// a missing referent, since the shooter may have disconnected while the
// bullet was in flight. Caller must hold the game lock.
func (g *Game) handleDeath(victim *Player, killerID string, now time.Time) {
	victim.RespawnAt = now.Add(RespawnDelay)
	g.metrics.Track(EvtDeath)
	g.accounts.AddDeath(victim.AuthID)

	killer, ok := g.players[killerID]
	killerTeam := TeamNone
	killerScore := 0
	if ok {
		killer.Score += KillScore
		killer.Kills++
		killerTeam = killer.Team
		killerScore = killer.Score
		g.addTeamScoreLocked(killer.Team)
		g.metrics.Track(EvtKill)
		g.accounts.AddKill(killer.AuthID)
	}

	g.broadcastMsgLocked(Envelope{T: MsgPlayerDied, Data: DeathEvent{
		KillerID:    killerID,
		VictimID:    victim.ID,
		KillerTeam:  killerTeam.String(),
		KillerScore: killerScore,
		TeamScores:  g.teamScores,
	}})

	if !ok {
		return
	}

	g.broadcastMsgLocked(Envelope{T: MsgTeamScoreUpdate, Data: g.teamScores})
	g.broadcastMsgLocked(Envelope{T: MsgUpdateScore, Data: ScoreEvent{
		PlayerID: killer.ID,
		Score:    killer.Score,
	}})

	for _, def := range CheckAchievements(killer) {
		g.metrics.Track(EvtAchievement)
		g.broadcastMsgLocked(Envelope{T: MsgAchievement, Data: AchievementEvent{
			PlayerID: killer.ID,
			Name:     def.Name,
			Points:   def.Points,
		}})
	}
}

// addTeamScoreLocked bumps the monotone counter for a team
func (g *Game) addTeamScoreLocked(team Team) {
	switch team {
	case TeamRed:
		g.teamScores.Red++
	case TeamBlue:
		g.teamScores.Blue++
	}
}
