package main

import (
	"fmt"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	auth := NewAuth(NewAccountStore())

	id, token, err := auth.Register("alice", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == 0 || token == "" {
		t.Fatal("register must return an id and a token")
	}

	loginID, loginToken, err := auth.Login("alice", "secret1", "1.2.3.4")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login returned wrong identity")
	}

	if _, _, err := auth.Login("alice", "wrongpass", "1.2.3.4"); err == nil {
		t.Error("wrong password must fail")
	}
	if _, _, err := auth.Login("nobody", "secret1", "1.2.3.4"); err == nil {
		t.Error("unknown user must fail")
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuth(NewAccountStore())

	if _, _, err := auth.Register("a", "secret1"); err == nil {
		t.Error("one-character username must be rejected")
	}
	if _, _, err := auth.Register("alice", "abc"); err == nil {
		t.Error("short password must be rejected")
	}
	if _, _, err := auth.Register("waytoolongusername", "secret1"); err == nil {
		t.Error("over-long username must be rejected")
	}
}

func TestDuplicateUsername(t *testing.T) {
	auth := NewAuth(NewAccountStore())

	if _, _, err := auth.Register("alice", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Register("ALICE", "secret2"); err == nil {
		t.Error("username uniqueness must be case-insensitive")
	}
}

func TestValidateToken(t *testing.T) {
	auth := NewAuth(NewAccountStore())

	id, token, err := auth.Register("alice", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	gotID, gotName, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if gotID != id || gotName != "alice" {
		t.Errorf("got (%d,%q), want (%d,%q)", gotID, gotName, id, "alice")
	}

	if _, _, err := auth.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token must fail")
	}

	// Tokens are bound to the process secret
	other := NewAuth(NewAccountStore())
	if _, _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed by another process must fail")
	}
}

func TestLoginRateLimit(t *testing.T) {
	auth := NewAuth(NewAccountStore())

	for i := 0; i < maxLoginAttempts; i++ {
		auth.Login("ghost", "pw", "9.9.9.9")
	}
	_, _, err := auth.Login("ghost", "pw", "9.9.9.9")
	if err == nil || err.Error() != "too many login attempts, try again later" {
		t.Errorf("expected the rate-limit error, got %v", err)
	}

	// Other addresses are unaffected
	if _, _, err := auth.Login("ghost", "pw", "8.8.8.8"); err == nil ||
		err.Error() == "too many login attempts, try again later" {
		t.Error("rate limit must be per address")
	}
}

func TestAccountLifetimeStats(t *testing.T) {
	store := NewAccountStore()
	acct, err := store.Create("alice", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	store.AddKill(acct.ID)
	store.AddKill(acct.ID)
	store.AddDeath(acct.ID)
	store.AddKill(0) // guest, no-op

	stats, ok := store.Stats(acct.ID)
	if !ok {
		t.Fatal("stats missing")
	}
	if stats.Kills != 2 || stats.Deaths != 1 {
		t.Errorf("got %d kills %d deaths", stats.Kills, stats.Deaths)
	}
	if _, ok := store.Stats(42); ok {
		t.Error("unknown account must report missing")
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *AccountStore
	store.AddKill(1)
	store.AddDeath(1)
}

func TestMetricsCountersAndGauges(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 3; i++ {
		m.Track(EvtKill)
	}
	m.Track(EvtJoin)
	m.SetLivePlayers(7)
	m.SetActiveLobbies(2)
	m.Stop() // drains the queue

	snap := m.Snapshot()
	if snap.Counters[EvtKill] != 3 || snap.Counters[EvtJoin] != 1 {
		t.Errorf("unexpected counters: %+v", snap.Counters)
	}
	if snap.LivePlayers != 7 || snap.ActiveLobbies != 2 {
		t.Errorf("unexpected gauges: %+v", snap)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Track(EvtKill)
	m.SetLivePlayers(1)
	m.SetActiveLobbies(1)
	m.Stop()
}

func TestLoginRateLimitDistinctUsers(t *testing.T) {
	auth := NewAuth(NewAccountStore())
	if _, _, err := auth.Register("bob", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	for i := 0; i < maxLoginAttempts-1; i++ {
		auth.Login(fmt.Sprintf("ghost%d", i), "pw", "7.7.7.7")
	}
	// A valid login still counts against and fits within the window
	if _, _, err := auth.Login("bob", "secret1", "7.7.7.7"); err != nil {
		t.Errorf("valid login within the window failed: %v", err)
	}
}
