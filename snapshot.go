package main

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// buildSnapshot copies the registry into a GameState. The copy is sorted
// by id so that two snapshots taken with no intervening mutation encode
// to identical bytes. Caller must hold the game lock.
func (g *Game) buildSnapshot() GameState {
	state := GameState{
		Players:    make([]PlayerState, 0, len(g.players)),
		Bullets:    make([]BulletState, 0, len(g.bullets)),
		PowerUps:   make([]PowerUpState, 0, len(g.powerUps)),
		TeamScores: g.teamScores,
		Obstacles:  g.world.Obstacles,
	}
	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, b := range g.bullets {
		state.Bullets = append(state.Bullets, b.ToState())
	}
	for _, pu := range g.powerUps {
		state.PowerUps = append(state.PowerUps, pu.ToState())
	}
	sort.Slice(state.Players, func(i, j int) bool { return state.Players[i].ID < state.Players[j].ID })
	sort.Slice(state.Bullets, func(i, j int) bool { return state.Bullets[i].ID < state.Bullets[j].ID })
	sort.Slice(state.PowerUps, func(i, j int) bool { return state.PowerUps[i].ID < state.PowerUps[j].ID })
	return state
}

// encodeSnapshot marshals a snapshot into the binary wire form
func encodeSnapshot(state GameState) ([]byte, error) {
	return msgpack.Marshal(state)
}

// decodeSnapshot is the inverse, used by tests and tooling
func decodeSnapshot(raw []byte) (GameState, error) {
	var state GameState
	err := msgpack.Unmarshal(raw, &state)
	return state, err
}
