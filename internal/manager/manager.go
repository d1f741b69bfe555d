// Package manager implements the process-wide Session registry: a flat
// id -> Session map with a nullable default session, duplicate-id
// rejection, default promotion/demotion, and an idle-session reaper.
package manager

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/netdap/netdap-mcp/internal/config"
	netdaperrors "github.com/netdap/netdap-mcp/internal/errors"
	"github.com/netdap/netdap-mcp/internal/session"
)

// commonSuffixes is the allowlist of short, idiomatic ids derived from the
// last dot-segment of a program or project name.
var commonSuffixes = map[string]bool{
	"api": true, "worker": true, "web": true, "service": true,
	"server": true, "client": true, "app": true, "host": true,
}

var kebabDisallowed = regexp.MustCompile(`[^a-z0-9]+`)

// Manager is the process-singleton Session registry.
type Manager struct {
	cfg config.Config

	mu               sync.RWMutex
	sessions         map[string]*session.Session
	lastUsed         map[string]time.Time
	defaultSessionID string
	anonCounter      int

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Manager and starts its idle-session reaper.
func New(cfg config.Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		sessions: make(map[string]*session.Session),
		lastUsed: make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}
	go m.reapLoop()
	return m
}

// Close stops the reaper and terminates every session.
func (m *Manager) Close() {
	m.cancel()

	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_ = m.TerminateSession(id)
	}
}

func (m *Manager) reapLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.reapIdle()
		}
	}
}

func (m *Manager) reapIdle() {
	if m.cfg.SessionTimeout <= 0 {
		return
	}

	m.mu.Lock()
	now := time.Now()
	var expired []string
	for id, last := range m.lastUsed {
		if now.Sub(last) > m.cfg.SessionTimeout {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		_ = m.TerminateSession(id)
	}
}

func (m *Manager) touchLocked(id string) {
	m.lastUsed[id] = time.Now()
}

// CreateSession allocates a new Session under a derived or explicit id.
// The first session created becomes the default.
func (m *Manager) CreateSession(explicitID, nameHint string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, netdaperrors.SessionLimitReached(m.cfg.MaxSessions)
	}

	id := explicitID
	if id == "" {
		id = m.deriveIDLocked(nameHint)
	} else if _, exists := m.sessions[id]; exists {
		return nil, netdaperrors.SessionDuplicate(id)
	}

	sess := session.New(id, m.cfg.NetcoredbgPath, m.cfg.NetcoredbgArgs, m.cfg.DotnetPath)
	m.sessions[id] = sess
	m.touchLocked(id)

	if m.defaultSessionID == "" {
		m.defaultSessionID = id
	}

	return sess, nil
}

// deriveIDLocked picks a short, readable id from nameHint: a recognized
// common suffix ("api", "worker", ...) or a kebab-cased form of the full
// hint, falling back to "session-<n>" when nameHint yields nothing usable.
// Must be called with m.mu held.
func (m *Manager) deriveIDLocked(nameHint string) string {
	if nameHint == "" {
		return m.anonymousIDLocked()
	}

	segments := strings.Split(nameHint, ".")
	last := strings.ToLower(segments[len(segments)-1])

	if commonSuffixes[last] {
		return m.uniqueIDLocked(last)
	}

	kebab := kebabDisallowed.ReplaceAllString(strings.ToLower(nameHint), "-")
	kebab = strings.Trim(kebab, "-")
	if kebab == "" {
		return m.anonymousIDLocked()
	}
	return m.uniqueIDLocked(kebab)
}

// uniqueIDLocked returns base if free, else base-2, base-3, ... Must be
// called with m.mu held.
func (m *Manager) uniqueIDLocked(base string) string {
	if _, exists := m.sessions[base]; !exists {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, exists := m.sessions[candidate]; !exists {
			return candidate
		}
	}
}

// anonymousIDLocked returns the next "session-<n>" id. Must be called
// with m.mu held.
func (m *Manager) anonymousIDLocked() string {
	for {
		m.anonCounter++
		candidate := "session-" + strconv.Itoa(m.anonCounter)
		if _, exists := m.sessions[candidate]; !exists {
			return candidate
		}
	}
}

// GetSession resolves id, or the default session when id is empty.
func (m *Manager) GetSession(id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if m.defaultSessionID == "" {
			return nil, netdaperrors.NoDefaultSession(len(m.sessions))
		}
		id = m.defaultSessionID
	}

	sess, ok := m.sessions[id]
	if !ok {
		return nil, netdaperrors.SessionNotFound(id, m.idsLocked())
	}
	m.touchLocked(id)
	return sess, nil
}

func (m *Manager) idsLocked() []string {
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// ListSessions returns every session's summary, newest-created order is
// not guaranteed (map iteration).
func (m *Manager) ListSessions() []*session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*session.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		all = append(all, sess)
	}
	return all
}

// IsDefault reports whether id is the current default session.
func (m *Manager) IsDefault(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSessionID == id
}

// SelectSession makes id the default session.
func (m *Manager) SelectSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return netdaperrors.SessionNotFound(id, m.idsLocked())
	}
	m.defaultSessionID = id
	return nil
}

// TerminateSession tears down and removes a session, promoting a
// replacement default if it was the default.
func (m *Manager) TerminateSession(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return netdaperrors.SessionNotFound(id, m.idsLocked())
	}
	delete(m.sessions, id)
	delete(m.lastUsed, id)

	wasDefault := m.defaultSessionID == id
	if wasDefault {
		m.defaultSessionID = ""
		for otherID := range m.sessions {
			m.defaultSessionID = otherID
			break
		}
	}
	m.mu.Unlock()

	return sess.Terminate()
}
