package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/mcoot/baldagame/internal/dependencies/clock"
	"github.com/mcoot/baldagame/internal/model"
)

// tokenPrefix marks bearer tokens issued by this service
const tokenPrefix = "sess_"

// Session binds a bearer token to the profile that owns it
type Session struct {
	Token     string
	PlayerID  model.PlayerID
	Profile   model.Profile
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// sessionTable keeps sessions in process memory. Sessions do not survive a
// restart; clients sign in again.
type sessionTable struct {
	clock clock.Clock
	ttl   time.Duration

	mu     sync.RWMutex
	byToken map[string]*Session
}

func newSessionTable(clock clock.Clock, ttl time.Duration) *sessionTable {
	return &sessionTable{clock: clock, ttl: ttl, byToken: make(map[string]*Session)}
}

func (t *sessionTable) issue(profile model.Profile) *Session {
	now := t.clock.Now()
	sess := &Session{
		Token:     newToken(),
		PlayerID:  profile.ID,
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}

	t.mu.Lock()
	t.byToken[sess.Token] = sess
	t.mu.Unlock()
	return sess
}

// find returns a live session. An expired one is evicted on sight.
func (t *sessionTable) find(token string) (*Session, bool) {
	t.mu.RLock()
	sess, ok := t.byToken[token]
	t.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if sess.expired(t.clock.Now()) {
		t.revoke(token)
		return nil, false
	}
	return sess, true
}

func (t *sessionTable) revoke(token string) {
	t.mu.Lock()
	delete(t.byToken, token)
	t.mu.Unlock()
}

func (t *sessionTable) sweep() int {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for token, sess := range t.byToken {
		if sess.expired(now) {
			delete(t.byToken, token)
			n++
		}
	}
	return n
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(b)
}
