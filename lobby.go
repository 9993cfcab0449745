package main

import (
	"sync"

	"github.com/google/uuid"
)

const (
	maxLobbies       = 100
	DefaultLobbyName = "Main Arena"
)

// Lobby is one simulated world instance players can join
type Lobby struct {
	ID   string
	Name string
	Game *Game
}

// LobbyManager handles creation and lookup of lobbies. One default lobby
// always exists and is never torn down.
type LobbyManager struct {
	mu        sync.RWMutex
	lobbies   map[string]*Lobby
	defaultID string
	accounts  *AccountStore
	metrics   *Metrics
}

// NewLobbyManager creates the manager and its always-on default lobby
func NewLobbyManager(accounts *AccountStore, metrics *Metrics) *LobbyManager {
	lm := &LobbyManager{
		lobbies:  make(map[string]*Lobby),
		accounts: accounts,
		metrics:  metrics,
	}
	def := lm.createLocked(DefaultLobbyName)
	lm.defaultID = def.ID
	return lm
}

func (lm *LobbyManager) createLocked(name string) *Lobby {
	id := uuid.NewString()
	game := NewGame(id, lm.accounts, lm.metrics)
	lobby := &Lobby{ID: id, Name: name, Game: game}
	lm.lobbies[id] = lobby
	go game.Run()
	lm.metrics.SetActiveLobbies(len(lm.lobbies))
	return lobby
}

// CreateLobby creates a new lobby. Returns nil if the limit is reached.
func (lm *LobbyManager) CreateLobby(name string) *Lobby {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if len(lm.lobbies) >= maxLobbies {
		return nil
	}
	return lm.createLocked(name)
}

// GetLobby returns a lobby by id; the empty id resolves to the default
// lobby
func (lm *LobbyManager) GetLobby(id string) *Lobby {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	if id == "" {
		id = lm.defaultID
	}
	return lm.lobbies[id]
}

// DefaultLobby returns the always-on lobby
func (lm *LobbyManager) DefaultLobby() *Lobby {
	return lm.GetLobby("")
}

// RemovePlayer removes a player from a lobby and tears the lobby down if
// it was a created one and is now empty
func (lm *LobbyManager) RemovePlayer(lobbyID, playerID string) {
	lm.mu.RLock()
	lobby, ok := lm.lobbies[lobbyID]
	defaultID := lm.defaultID
	lm.mu.RUnlock()
	if !ok {
		return
	}
	lobby.Game.RemovePlayer(playerID)

	// StopIfEmpty makes the emptiness check and the stop one atomic step
	// under the game lock; a join racing the teardown either lands before
	// the check or fails against the stopped game.
	if lobbyID != defaultID && lobby.Game.StopIfEmpty() {
		lm.mu.Lock()
		delete(lm.lobbies, lobbyID)
		lm.metrics.SetActiveLobbies(len(lm.lobbies))
		lm.mu.Unlock()
	}
}

// ListLobbies returns info about all active lobbies
func (lm *LobbyManager) ListLobbies() []LobbyInfo {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	list := make([]LobbyInfo, 0, len(lm.lobbies))
	for _, lobby := range lm.lobbies {
		list = append(list, LobbyInfo{
			ID:      lobby.ID,
			Name:    lobby.Name,
			Players: lobby.Game.PlayerCount(),
		})
	}
	return list
}

// Stop stops every lobby's game loop
func (lm *LobbyManager) Stop() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, lobby := range lm.lobbies {
		lobby.Game.Stop()
	}
}
