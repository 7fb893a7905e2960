package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/pkg/helpers"
)

// ErrNoSession is returned when an operation requires a logged-in session.
var ErrNoSession = errors.New("no active session")

// Session identifies one authenticated browser session. It is built by the
// auth middleware from a validated access token; a nil or zero Session means
// the visitor is not logged in.
type Session struct {
	UserID   string
	Username string
}

func cacheKey(userID string) string {
	return "user:session:" + userID
}

// Provider tracks login state and exposes the logged-in user's profile as a
// lazy stream. Profiles are cached in Redis and fetched from the gateway on
// a cache miss; Refresh re-publishes to every live subscriber, so a stream
// may emit repeatedly over its lifetime.
type Provider struct {
	Gateway gateway.API
	Redis   *redis.Client
	Logger  *logrus.Logger
	TTL     time.Duration

	mu   sync.Mutex
	subs map[string][]chan entity.User
}

func NewProvider(gw gateway.API, rdb *redis.Client, logger *logrus.Logger, ttl time.Duration) *Provider {
	return &Provider{
		Gateway: gw,
		Redis:   rdb,
		Logger:  logger,
		TTL:     ttl,
		subs:    make(map[string][]chan entity.User),
	}
}

// IsAuthenticated reports whether s represents a logged-in visitor.
func (p *Provider) IsAuthenticated(s *Session) bool {
	return s != nil && s.UserID != ""
}

// Subscribe returns a stream that lazily emits the current profile and emits
// again after every Refresh. The returned stop function unsubscribes; the
// stream is also abandoned when ctx is cancelled.
func (p *Provider) Subscribe(ctx context.Context, s *Session) (<-chan entity.User, func(), error) {
	if !p.IsAuthenticated(s) {
		return nil, nil, ErrNoSession
	}

	ch := make(chan entity.User, 1)
	p.mu.Lock()
	p.subs[s.UserID] = append(p.subs[s.UserID], ch)
	p.mu.Unlock()

	stop := func() { p.unsubscribe(s.UserID, ch) }

	go func() {
		u, err := p.load(ctx, s)
		if err != nil {
			// End the stream so subscribers blocked on the first emission
			// observe the failure instead of waiting forever. The channel is
			// closed only if still registered; End may have closed it while
			// the load was in flight.
			if p.Logger != nil {
				p.Logger.WithError(err).WithField("user_id", s.UserID).Warn("profile load failed")
			}
			if p.unsubscribe(s.UserID, ch) {
				close(ch)
			}
			return
		}
		p.publish(s.UserID, u, ch)
	}()

	return ch, stop, nil
}

// Current resolves the profile once, without subscribing. Used where a view
// only needs a snapshot of the logged-in user.
func (p *Provider) Current(ctx context.Context, s *Session) (entity.User, error) {
	if !p.IsAuthenticated(s) {
		return entity.User{}, ErrNoSession
	}
	return p.load(ctx, s)
}

// Refresh drops the cached profile, reloads it from the gateway, and
// publishes the fresh record to every live subscriber.
func (p *Provider) Refresh(ctx context.Context, s *Session) error {
	if !p.IsAuthenticated(s) {
		return ErrNoSession
	}
	if p.Redis != nil {
		if err := helpers.RedisDel(ctx, p.Redis, cacheKey(s.UserID)); err != nil && p.Logger != nil {
			p.Logger.WithError(err).WithField("user_id", s.UserID).Warn("session cache invalidation failed")
		}
	}
	u, err := p.load(ctx, s)
	if err != nil {
		return err
	}

	p.publish(s.UserID, u, nil)
	return nil
}

// publish delivers u to the user's live subscribers, or to just one of them
// when only is non-nil. Sends happen under the lock against the current
// subscriber set so a channel closed by End is never written to. Sends are
// non-blocking: a subscriber that never drained its previous value keeps the
// stale one rather than wedging the publisher.
func (p *Provider) publish(userID string, u entity.User, only chan entity.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs[userID] {
		if only != nil && ch != only {
			continue
		}
		select {
		case ch <- u:
		default:
		}
	}
}

// End terminates the session: the cached profile is dropped and every live
// stream is closed.
func (p *Provider) End(ctx context.Context, s *Session) error {
	if !p.IsAuthenticated(s) {
		return ErrNoSession
	}
	if p.Redis != nil {
		if err := helpers.RedisDel(ctx, p.Redis, cacheKey(s.UserID)); err != nil && p.Logger != nil {
			p.Logger.WithError(err).WithField("user_id", s.UserID).Warn("session cache delete failed")
		}
	}
	p.mu.Lock()
	subs := p.subs[s.UserID]
	delete(p.subs, s.UserID)
	p.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
	return nil
}

func (p *Provider) load(ctx context.Context, s *Session) (entity.User, error) {
	if p.Redis != nil {
		var cached entity.User
		ok, err := helpers.RedisGetJSON(ctx, p.Redis, cacheKey(s.UserID), &cached)
		if err != nil && p.Logger != nil {
			p.Logger.WithError(err).WithField("user_id", s.UserID).Warn("session cache read failed")
		}
		if ok {
			return cached, nil
		}
	}

	u, err := p.Gateway.CurrentUser(ctx, s.Username)
	if err != nil {
		return entity.User{}, err
	}
	if p.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, p.Redis, cacheKey(s.UserID), u, p.TTL); err != nil && p.Logger != nil {
			p.Logger.WithError(err).WithField("user_id", s.UserID).Warn("session cache write failed")
		}
	}
	return u, nil
}

// unsubscribe removes ch from the user's subscriber set and reports whether
// it was still registered. A false return means End already took ownership of
// the channel (and closed it).
func (p *Provider) unsubscribe(userID string, ch chan entity.User) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subs[userID]
	for i, c := range subs {
		if c == ch {
			p.subs[userID] = append(subs[:i], subs[i+1:]...)
			return true
		}
	}
	return false
}
