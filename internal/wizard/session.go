package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/audeasy/audeasy/internal/errors"
	"github.com/audeasy/audeasy/internal/industry"
	"github.com/audeasy/audeasy/internal/logger"
	"github.com/audeasy/audeasy/internal/models"
)

// BusinessInfo is what the first wizard step learned about the business
type BusinessInfo struct {
	Description string                `json:"description"`
	Industry    industry.Profile      `json:"industry"`
	Location    industry.Location     `json:"location"`
	Size        industry.BusinessSize `json:"size"`
}

// Session holds setup wizard progress for one onboarding flow
type Session struct {
	ID                string                 `json:"id"`
	BusinessInfo      *BusinessInfo          `json:"business_info,omitempty"`
	SelectedTemplates []string               `json:"selected_templates,omitempty"`
	IncidentText      string                 `json:"incident_text,omitempty"`
	ParsedIncident    *models.ParsedIncident `json:"parsed_incident,omitempty"`
	Completed         bool                   `json:"completed"`
	CreatedAt         time.Time              `json:"created_at"`
	CompletedAt       time.Time              `json:"completed_at,omitempty"`
}

// Manager keeps wizard sessions in memory with a TTL sweep
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a session manager with the given lifetime
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start creates a fresh session and returns it
func (m *Manager) Start() *Session {
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: m.now(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

// Get returns the session or ErrSessionExpired when missing or stale
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || m.expired(session) {
		return nil, apperrors.ErrSessionExpired
	}
	return session, nil
}

// Update applies fn to the session under the write lock
func (m *Manager) Update(id string, fn func(*Session)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok || m.expired(session) {
		return nil, apperrors.ErrSessionExpired
	}
	fn(session)
	return session, nil
}

// Complete marks the session finished and stamps the completion time
func (m *Manager) Complete(id string) (*Session, error) {
	return m.Update(id, func(s *Session) {
		s.Completed = true
		s.CompletedAt = m.now()
	})
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.CreatedAt) > m.ttl
}

// Sweep drops expired sessions and returns how many were removed
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if m.expired(session) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions periodically until the context is cancelled
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				logger.Debug("Swept expired wizard sessions", "removed", removed)
			}
		}
	}
}
