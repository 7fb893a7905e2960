package application

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/notify"
	"github.com/openlibro/librogate/internal/session"
)

// ProfileRegistry hands out one Profile orchestrator per authenticated user,
// giving the pending-change buffer a home across requests. Each orchestrator
// gets its own alert center so one user's notifications never surface on
// another user's page. Entries are dropped when the session ends.
type ProfileRegistry struct {
	Gateway gateway.API
	Session SessionSource
	Logger  *logrus.Logger

	mu    sync.Mutex
	items map[string]profileEntry
}

type profileEntry struct {
	profile *Profile
	alerts  *notify.Center
}

func NewProfileRegistry(gw gateway.API, src SessionSource, logger *logrus.Logger) *ProfileRegistry {
	return &ProfileRegistry{
		Gateway: gw,
		Session: src,
		Logger:  logger,
		items:   make(map[string]profileEntry),
	}
}

// For returns the orchestrator and alert center bound to the session's user,
// creating them on first use.
func (r *ProfileRegistry) For(s *session.Session) (*Profile, *notify.Center) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[s.UserID]; ok {
		return e.profile, e.alerts
	}
	alerts := notify.NewCenter(r.Logger)
	p := NewProfile(r.Gateway, r.Session, alerts, r.Logger, s)
	r.items[s.UserID] = profileEntry{profile: p, alerts: alerts}
	return p, alerts
}

// Drop releases the orchestrator for a user, closing its profile stream.
func (r *ProfileRegistry) Drop(userID string) {
	r.mu.Lock()
	e, ok := r.items[userID]
	delete(r.items, userID)
	r.mu.Unlock()
	if ok {
		e.profile.Close()
	}
}
