// Package guild ties together the per-guild state: speaker permissions
// and the optional live voice session.
package guild

import (
	"context"
	"sync"

	"yomiage/internal/speaker"
	"yomiage/internal/voice"
)

// SessionFactory builds a voice session for a guild.
type SessionFactory func(guildID string) *voice.Session

// Coordinator owns one permission store and at most one voice session.
// Connect and Disconnect are serialized per guild.
type Coordinator struct {
	guildID     string
	Permissions *speaker.Store

	newSession SessionFactory

	mu      sync.Mutex
	session *voice.Session
}

// Connect ensures a session exists and joins the given channel.
func (c *Coordinator) Connect(ctx context.Context, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	created := false
	if c.session == nil {
		c.session = c.newSession(c.guildID)
		created = true
	}

	err := c.session.Connect(ctx, channelID)
	if err != nil && created {
		c.session.Close()
		c.session = nil
	}
	return err
}

// Disconnect tears down the session, if any. A session left without a
// connection by a failed move is still cleaned up, but the caller is
// told there was nothing live to leave.
func (c *Coordinator) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return voice.ErrNotConnected
	}
	connected := c.session.Connected()
	c.session.Close()
	c.session = nil
	if !connected {
		return voice.ErrNotConnected
	}
	return nil
}

// Session returns the live session, or nil when disconnected.
func (c *Coordinator) Session() *voice.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Manager holds the coordinators for every guild the process has seen.
// Creation is lazy; a coordinator is removed when the bot leaves the
// guild so the map stays bounded.
type Manager struct {
	mu      sync.Mutex
	coords  map[string]*Coordinator
	factory SessionFactory
}

// NewManager creates a manager using factory for new voice sessions.
func NewManager(factory SessionFactory) *Manager {
	return &Manager{
		coords:  make(map[string]*Coordinator),
		factory: factory,
	}
}

// Get returns the guild's coordinator, creating it on first reference.
// Concurrent first-touch for the same guild yields a single coordinator.
func (m *Manager) Get(guildID string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coords[guildID]
	if !ok {
		c = &Coordinator{
			guildID:     guildID,
			Permissions: speaker.NewStore(),
			newSession:  m.factory,
		}
		m.coords[guildID] = c
	}
	return c
}

// Remove evicts a guild's coordinator, closing its session if live.
func (m *Manager) Remove(guildID string) {
	m.mu.Lock()
	c, ok := m.coords[guildID]
	delete(m.coords, guildID)
	m.mu.Unlock()

	if ok && c.Session() != nil {
		_ = c.Disconnect()
	}
}

// ConnectedCount returns how many guilds hold a live voice connection.
func (m *Manager) ConnectedCount() int {
	m.mu.Lock()
	coords := make([]*Coordinator, 0, len(m.coords))
	for _, c := range m.coords {
		coords = append(coords, c)
	}
	m.mu.Unlock()

	n := 0
	for _, c := range coords {
		if s := c.Session(); s != nil && s.Connected() {
			n++
		}
	}
	return n
}
