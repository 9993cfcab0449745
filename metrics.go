package main

import (
	"sync"
	"time"
)

// Event types for server metrics
const (
	EvtJoin        = "join"
	EvtLeave       = "leave"
	EvtShot        = "shot"
	EvtKill        = "kill"
	EvtDeath       = "death"
	EvtAchievement = "achievement"
)

// Metrics counts game events in memory. Events flow through a buffered
// channel into a collector goroutine so tracking never blocks a game
// cycle; a full channel drops the event instead.
type Metrics struct {
	events chan string
	stop   chan struct{}
	wg     sync.WaitGroup

	mu       sync.RWMutex
	counters map[string]int64
	started  time.Time

	// Live gauges
	livePlayers   int
	activeLobbies int
}

// NewMetrics creates and starts the collector
func NewMetrics() *Metrics {
	m := &Metrics{
		events:   make(chan string, 1024),
		stop:     make(chan struct{}),
		counters: make(map[string]int64),
		started:  time.Now(),
	}
	m.wg.Add(1)
	go m.collector()
	return m
}

// Track enqueues an event (non-blocking). Safe on a nil receiver so game
// code doesn't have to care whether metrics are wired.
func (m *Metrics) Track(evtType string) {
	if m == nil {
		return
	}
	select {
	case m.events <- evtType:
	default:
		// channel full, drop rather than stall a cycle
	}
}

// SetLivePlayers updates the connected-player gauge
func (m *Metrics) SetLivePlayers(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.livePlayers = n
	m.mu.Unlock()
}

// SetActiveLobbies updates the lobby gauge
func (m *Metrics) SetActiveLobbies(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.activeLobbies = n
	m.mu.Unlock()
}

// MetricsSnapshot is the /stats payload
type MetricsSnapshot struct {
	UptimeSeconds int64            `json:"uptimeSeconds"`
	LivePlayers   int              `json:"livePlayers"`
	ActiveLobbies int              `json:"activeLobbies"`
	Counters      map[string]int64 `json:"counters"`
}

// Snapshot returns a copy of all counters and gauges
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	return MetricsSnapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		LivePlayers:   m.livePlayers,
		ActiveLobbies: m.activeLobbies,
		Counters:      counters,
	}
}

// Stop shuts down the collector after draining queued events
func (m *Metrics) Stop() {
	if m == nil {
		return
	}
	close(m.stop)
	m.wg.Wait()
}

func (m *Metrics) collector() {
	defer m.wg.Done()
	for {
		select {
		case evt := <-m.events:
			m.mu.Lock()
			m.counters[evt]++
			m.mu.Unlock()
		case <-m.stop:
			for {
				select {
				case evt := <-m.events:
					m.mu.Lock()
					m.counters[evt]++
					m.mu.Unlock()
				default:
					return
				}
			}
		}
	}
}
