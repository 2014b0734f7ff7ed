package authgate

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"invoiceflow/internal/models"
)

// State of the gate for the observed session.
type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StateAdmin           State = "authenticated-admin"
	StateNonAdmin        State = "authenticated-non-admin"
)

// Routes the gate redirects to.
const (
	LoginRoute        = "/login"
	HomeRoute         = "/"
	UnauthorizedRoute = "/login?error=unauthorized"
)

// AccessDeniedMessage is shown once per session to signed-in non-admins.
const AccessDeniedMessage = "Access denied. Your account is not authorized to use this application."

// Decision is what to do with one route visit.
type Decision struct {
	State    State          `json:"state"`
	Route    string         `json:"route"`
	Render   bool           `json:"render"`
	Redirect string         `json:"redirect,omitempty"`
	Notice   *models.Notice `json:"notice,omitempty"`
}

// NoticeTracker remembers which sessions were already shown the
// access-denied notice. First returns true only for the first call per key.
type NoticeTracker interface {
	First(ctx context.Context, sessionID string) (bool, error)
}

// StateFor classifies a session under a policy. A nil session is unauthenticated.
func StateFor(p *Policy, s *models.Session) State {
	switch {
	case s == nil || s.Email == "":
		return StateUnauthenticated
	case p.IsAdmin(s.Email):
		return StateAdmin
	default:
		return StateNonAdmin
	}
}

// IsLoginRoute reports whether route is the login screen, ignoring query and trailing slash.
func IsLoginRoute(route string) bool {
	if u, err := url.Parse(route); err == nil {
		route = u.Path
	}
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	return route == LoginRoute
}

// Evaluate is the pure routing decision for a state and route, without notices.
func Evaluate(state State, route string) Decision {
	d := Decision{State: state, Route: route}
	login := IsLoginRoute(route)

	switch state {
	case StateLoading:
	case StateUnauthenticated:
		if !login {
			d.Redirect = LoginRoute
		}
	case StateNonAdmin:
		if !login {
			d.Redirect = UnauthorizedRoute
		}
	case StateAdmin:
		if login {
			d.Redirect = HomeRoute
		} else {
			d.Render = true
		}
	}
	return d
}

// Decide evaluates a visit and attaches the access-denied notice the first
// time a non-admin session is turned away.
func Decide(ctx context.Context, tracker NoticeTracker, state State, sessionID, route string) (Decision, error) {
	d := Evaluate(state, route)
	if state != StateNonAdmin || d.Redirect == "" || tracker == nil {
		return d, nil
	}
	first, err := tracker.First(ctx, sessionID)
	if err != nil {
		return d, err
	}
	if first {
		d.Notice = &models.Notice{
			Level:   models.NoticeError,
			Type:    models.AlertTypeAccessDenied,
			Message: AccessDeniedMessage,
		}
	}
	return d, nil
}

// Gate follows one session stream. It starts in loading until the first event.
type Gate struct {
	policy  *Policy
	tracker NoticeTracker

	mu      sync.RWMutex
	state   State
	session *models.Session
}

// New creates a gate in the loading state.
func New(policy *Policy, tracker NoticeTracker) *Gate {
	return &Gate{policy: policy, tracker: tracker, state: StateLoading}
}

// Observe applies a session event (nil on sign-out) and returns the new state.
func (g *Gate) Observe(s *models.Session) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
	g.state = StateFor(g.policy, s)
	return g.state
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Session returns the last observed session.
func (g *Gate) Session() *models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Decide evaluates route for the current state.
func (g *Gate) Decide(ctx context.Context, route string) (Decision, error) {
	g.mu.RLock()
	state, session := g.state, g.session
	g.mu.RUnlock()

	sid := ""
	if session != nil {
		sid = session.ID
	}
	return Decide(ctx, g.tracker, state, sid, route)
}

// Watch feeds session events into the gate and calls onChange with the
// decision for route after each one. It returns when ctx ends or events closes.
func (g *Gate) Watch(ctx context.Context, events <-chan *models.Session, route string, onChange func(Decision)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-events:
			if !ok {
				return nil
			}
			g.Observe(s)
			d, err := g.Decide(ctx, route)
			if err != nil {
				return err
			}
			if onChange != nil {
				onChange(d)
			}
		}
	}
}

// MemoryTracker is an in-process NoticeTracker.
type MemoryTracker struct {
	seen sync.Map
}

// NewMemoryTracker creates an empty tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{}
}

// First implements NoticeTracker.
func (m *MemoryTracker) First(_ context.Context, sessionID string) (bool, error) {
	_, loaded := m.seen.LoadOrStore(sessionID, struct{}{})
	return !loaded, nil
}
