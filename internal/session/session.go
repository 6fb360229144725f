// Package session keeps one catalog browser per operator, keyed by a cookie.
package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ppchow/pettington-product-navigator/internal/navigator"
)

// CookieName is the cookie that carries the session ID.
const CookieName = "navigator_session"

const (
	defaultTTL      = 24 * time.Hour
	defaultCapacity = 1000
)

type Config struct {
	TTL      time.Duration
	Capacity int
	Secure   bool
}

// BrowserFactory creates the browser for a new session.
type BrowserFactory func() *navigator.Browser

// Manager hands out browsers. Idle sessions expire after the TTL and the
// least recently used session is evicted once the capacity is reached.
type Manager struct {
	browsers *expirable.LRU[string, *navigator.Browser]
	factory  BrowserFactory
	ttl      time.Duration
	secure   bool
	logger   *slog.Logger
}

func NewManager(factory BrowserFactory, cfg Config, logger *slog.Logger) (*Manager, error) {
	if factory == nil {
		return nil, fmt.Errorf("browser factory is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sessions")

	onEvict := func(id string, _ *navigator.Browser) {
		logger.Debug("session evicted", "session_id", id)
	}

	return &Manager{
		browsers: expirable.NewLRU[string, *navigator.Browser](cfg.Capacity, onEvict, cfg.TTL),
		factory:  factory,
		ttl:      cfg.TTL,
		secure:   cfg.Secure,
		logger:   logger,
	}, nil
}

// Browser returns the browser of the request's session, starting a session
// and setting the cookie when none is active.
func (m *Manager) Browser(w http.ResponseWriter, r *http.Request) (*navigator.Browser, string) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		if browser, ok := m.browsers.Get(cookie.Value); ok {
			// Re-adding refreshes the expiry.
			m.browsers.Add(cookie.Value, browser)
			return browser, cookie.Value
		}
	}

	sessionID := generateSessionID()
	browser := m.factory()
	m.browsers.Add(sessionID, browser)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.logger.Debug("session started", "session_id", sessionID)

	return browser, sessionID
}

// Destroy drops the session and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		m.browsers.Remove(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) Len() int {
	return m.browsers.Len()
}

func (m *Manager) Close() error {
	if m == nil || m.browsers == nil {
		return nil
	}
	m.browsers.Purge()
	return nil
}

// generateSessionID generates a session ID.
func generateSessionID() string {
	return uuid.NewString()
}
