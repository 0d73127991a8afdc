// Package session owns the lifecycle of authenticated sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
	"github.com/mamadbah2/inventory/internal/service/access"
	"github.com/mamadbah2/inventory/pkg/clients/auth"
)

const (
	// DefaultTTL applies to sessions rebuilt from a bare token whose expiry is unknown.
	DefaultTTL        = time.Hour
	subscriberBacklog = 16
)

// User identifies the account behind a session.
type User struct {
	ID    string `json:"userId"`
	Email string `json:"email"`
}

// Session is the explicit authenticated context handed to the services.
type Session struct {
	AccessToken  string
	User         User
	Role         models.Role
	Capabilities models.Capabilities
	ExpiresAt    time.Time
}

// EventType names a session lifecycle transition.
type EventType string

const (
	EventSignedIn    EventType = "signed_in"
	EventSignedOut   EventType = "signed_out"
	EventRoleChanged EventType = "role_changed"
)

// Event is pushed to subscribers on every lifecycle transition.
type Event struct {
	Type    EventType
	Session Session
	At      time.Time
}

// Manager keeps active sessions keyed by access token.
type Manager struct {
	auth   auth.Client
	roles  recordstore.Provider
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session

	subMu       sync.RWMutex
	subscribers map[int]chan Event
	nextSub     int
}

// NewManager creates a session manager.
func NewManager(authClient auth.Client, roles recordstore.Provider, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		auth:        authClient,
		roles:       roles,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]Session),
		subscribers: make(map[int]chan Event),
	}
}

// SignIn authenticates with email and password and starts a session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("credentials", "email and password are required")
	}

	token, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s, err := m.build(ctx, token.AccessToken, User{ID: token.User.ID, Email: token.User.Email}, token.ExpiresAt)
	if err != nil {
		return nil, err
	}
	m.store(s)
	m.logger.Info("session started", zap.String("user_id", s.User.ID), zap.String("role", string(s.Role)))
	m.emit(EventSignedIn, s)
	return &s, nil
}

// Resolve returns the session for a token, rebuilding it from the auth
// service when it is unknown or expired.
func (m *Manager) Resolve(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, models.ErrUnauthenticated
	}

	m.mu.RLock()
	cached, ok := m.sessions[accessToken]
	m.mu.RUnlock()
	if ok && m.now().Before(cached.ExpiresAt) {
		return &cached, nil
	}
	if ok {
		m.drop(accessToken)
	}

	user, err := m.auth.User(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	s, err := m.build(ctx, accessToken, User{ID: user.ID, Email: user.Email}, m.now().Add(DefaultTTL))
	if err != nil {
		return nil, err
	}
	m.store(s)
	m.emit(EventSignedIn, s)
	return &s, nil
}

// Refresh re-reads the role of an active session and replaces it wholesale.
func (m *Manager) Refresh(ctx context.Context, accessToken string) (*Session, error) {
	m.mu.RLock()
	current, ok := m.sessions[accessToken]
	m.mu.RUnlock()
	if !ok {
		return nil, models.ErrUnauthenticated
	}

	next, err := m.build(ctx, accessToken, current.User, current.ExpiresAt)
	if err != nil {
		return nil, err
	}
	m.store(next)

	if next.Role != current.Role || next.Capabilities != current.Capabilities {
		m.logger.Info("session role changed",
			zap.String("user_id", next.User.ID),
			zap.String("from", string(current.Role)),
			zap.String("to", string(next.Role)),
		)
		m.emit(EventRoleChanged, next)
	}
	return &next, nil
}

// SignOut ends the session locally and at the auth service. The local session
// is torn down even when the remote call fails; that error is returned.
func (m *Manager) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return models.ErrUnauthenticated
	}

	remoteErr := m.auth.SignOut(ctx, accessToken)
	if remoteErr != nil && !errors.Is(remoteErr, models.ErrUnauthenticated) {
		m.logger.Warn("remote sign out failed", zap.Error(remoteErr))
	} else {
		remoteErr = nil
	}

	if s, ok := m.drop(accessToken); ok {
		m.emit(EventSignedOut, s)
	}
	if remoteErr != nil {
		return fmt.Errorf("sign out: %w", remoteErr)
	}
	return nil
}

// Subscribe returns a stream of session events and a function that ends the
// subscription. Events are dropped for subscribers that fall behind.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBacklog)

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subscribers, id)
			close(ch)
			m.subMu.Unlock()
		})
	}
}

// Active reports the number of cached sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) build(ctx context.Context, accessToken string, user User, expiresAt time.Time) (Session, error) {
	role, err := m.roles.ForToken(accessToken).RoleFor(ctx, user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("resolve role: %w", err)
	}
	return Session{
		AccessToken:  accessToken,
		User:         user,
		Role:         role,
		Capabilities: access.Resolve(role),
		ExpiresAt:    expiresAt,
	}, nil
}

func (m *Manager) store(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.AccessToken] = s
}

func (m *Manager) drop(accessToken string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[accessToken]
	delete(m.sessions, accessToken)
	return s, ok
}

func (m *Manager) emit(eventType EventType, s Session) {
	event := Event{Type: eventType, Session: s, At: m.now()}

	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for id, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			m.logger.Warn("session subscriber lagging, event dropped", zap.Int("subscriber", id), zap.String("event", string(eventType)))
		}
	}
}
