package afs

import (
	"net/http"
	"sync"
	"time"
)

const (
	// UserCookie and SessionCookie are the default names under which ids are kept
	UserCookie    = "AfsUserId"
	SessionCookie = "AfsSessionId"

	userCookieMaxAge = 365 * 24 * time.Hour
)

// SessionStore keeps named values between requests
type SessionStore interface {
	Get(name string) (string, bool)
	Set(name, value string)
}

// CookieStore reads cookies from a request and writes them to its response
type CookieStore struct {
	r *http.Request
	w http.ResponseWriter

	// MaxAge by cookie name; absent names are written as session cookies
	MaxAge map[string]time.Duration

	mu sync.Mutex
	// values written during this request win over the request cookies
	set map[string]string
}

// NewCookieStore binds a store to one request/response pair
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{
		r:      r,
		w:      w,
		MaxAge: map[string]time.Duration{UserCookie: userCookieMaxAge},
		set:    map[string]string{},
	}
}

func (s *CookieStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(name)
}

func (s *CookieStore) get(name string) (string, bool) {
	if v, ok := s.set[name]; ok {
		return v, v != ""
	}
	c, err := s.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.get(name); ok && cur == value {
		return
	}
	s.set[name] = value
	c := &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	if age := s.MaxAge[name]; age > 0 {
		c.MaxAge = int(age / time.Second)
	}
	http.SetCookie(s.w, c)
}

// MemoryStore is a SessionStore for processes without cookies (CLI, tests)
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: map[string]string{}} }

func (s *MemoryStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[name]
	return v, ok && v != ""
}

func (s *MemoryStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[name] = value
}

// UserSessionManager maps the user and session ids of queries onto a store.
// It satisfies query.IDSource
type UserSessionManager struct {
	store      SessionStore
	userKey    string
	sessionKey string
}

// NewUserSessionManager uses the default cookie names unless names are given
func NewUserSessionManager(store SessionStore, names ...string) *UserSessionManager {
	m := &UserSessionManager{store: store, userKey: UserCookie, sessionKey: SessionCookie}
	if len(names) > 0 && names[0] != "" {
		m.userKey = names[0]
	}
	if len(names) > 1 && names[1] != "" {
		m.sessionKey = names[1]
	}
	return m
}

func (m *UserSessionManager) UserID() string {
	v, _ := m.store.Get(m.userKey)
	return v
}

func (m *UserSessionManager) SessionID() string {
	v, _ := m.store.Get(m.sessionKey)
	return v
}

// Update stores the non-empty ids
func (m *UserSessionManager) Update(userID, sessionID string) {
	if userID != "" {
		m.store.Set(m.userKey, userID)
	}
	if sessionID != "" {
		m.store.Set(m.sessionKey, sessionID)
	}
}
