package services

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
)

// pruneInterval is the minimum time between sweeps of expired sessions.
const pruneInterval = time.Minute

type gateSession struct {
	expires time.Time // zero: never pruned
	ended   bool
	rooms   map[string]struct{}
}

// AccessGate tracks live sessions and the password-protected rooms each
// one has unlocked. Ended sessions are remembered until their token would
// have expired, so a token cannot be reused after logout.
type AccessGate struct {
	mu        sync.Mutex
	sessions  map[string]*gateSession
	now       func() time.Time
	lastPrune time.Time
}

func NewAccessGate() *AccessGate {
	return &AccessGate{
		sessions: make(map[string]*gateSession),
		now:      time.Now,
	}
}

// session must be called with g.mu held.
func (g *AccessGate) session(id string) *gateSession {
	s, ok := g.sessions[id]
	if !ok {
		s = &gateSession{}
		g.sessions[id] = s
	}
	return s
}

// Open registers session as live until expires. It fails with
// common.ErrorInvalidToken for a session that already ended.
func (g *AccessGate) Open(session string, expires time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.maybePrune()

	s := g.session(session)
	if s.ended {
		return common.ErrorInvalidToken
	}
	if s.expires.IsZero() || expires.After(s.expires) {
		s.expires = expires
	}
	return nil
}

func (g *AccessGate) Grant(session, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.session(session)
	if s.ended {
		return
	}
	if s.rooms == nil {
		s.rooms = make(map[string]struct{})
	}
	s.rooms[room] = struct{}{}
}

func (g *AccessGate) HasAccess(session, room string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[session]
	if !ok || s.ended {
		return false
	}
	_, ok = s.rooms[room]
	return ok
}

// End drops every grant of session and refuses it from now on.
func (g *AccessGate) End(session string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.session(session)
	s.ended = true
	s.rooms = nil
}

// maybePrune forgets sessions past their expiry, at most once per
// pruneInterval. It must be called with g.mu held.
func (g *AccessGate) maybePrune() {
	now := g.now()
	if now.Sub(g.lastPrune) < pruneInterval {
		return
	}
	g.lastPrune = now

	for id, s := range g.sessions {
		if !s.expires.IsZero() && now.After(s.expires) {
			delete(g.sessions, id)
		}
	}
}

func (g *AccessGate) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}
