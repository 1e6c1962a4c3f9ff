// Package gate decides, for every navigation and every session change,
// whether the current view may render, must wait or must redirect.
package gate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iudanet/fantasy11/internal/client/session"
)

// maxRedirects prevents a misconfigured route table from looping.
const maxRedirects = 4

// StateSource is the part of the session manager the gate observes.
type StateSource interface {
	State() session.State
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Event is delivered to listeners when the decision for the current view changes.
type Event struct {
	// View is the context of the view the decision belongs to. It is
	// cancelled by the next navigation.
	View       context.Context
	Decision   Decision
	Generation uint64
	State      session.State
}

// Gate tracks the current route and session state and keeps their decision
// consistent. All evaluations happen under one lock, so a route change racing
// a state change ends with the decision for the latest pair.
//
// Каждая навигация получает свой context; он отменяется при следующей навигации,
// и результаты незавершённых запросов старого view игнорируются.
type Gate struct {
	source      StateSource
	logger      *slog.Logger
	parent      context.Context
	view        context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	listeners   []func(Event)
	last        Decision
	state       session.State
	path        string
	gen         uint64
	delivered   uint64
	mu          sync.Mutex
	deliverMu   sync.Mutex
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used for decision traces.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// New creates a gate positioned at "/" and subscribed to source.
func New(source StateSource, opts ...Option) *Gate {
	g := &Gate{
		source: source,
		logger: slog.Default(),
		path:   "/",
		state:  source.State(),
		parent: context.Background(),
		view:   context.Background(),
		cancel: func() {},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.last = Decide(g.state, g.path)
	g.unsubscribe = source.Subscribe(func(session.Snapshot) {
		g.stateChanged()
	})
	return g
}

// Close detaches the gate from the session and cancels the current view.
func (g *Gate) Close() {
	g.unsubscribe()
	g.mu.Lock()
	g.cancel()
	g.mu.Unlock()
}

// OnChange registers fn for decision changes. Events are delivered in
// generation order; stale ones are dropped. fn must not call back into the gate.
func (g *Gate) OnChange(fn func(Event)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// Current returns the decision for the current (state, path) pair.
func (g *Gate) Current() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// View returns the context of the current view. After a redirect caused by a
// session change it belongs to the redirect target.
func (g *Gate) View() context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Navigate moves to path. It implements session.Navigator.
func (g *Gate) Navigate(path string) {
	_, _ = g.navigate(context.Background(), path)
}

// Enter navigates to path and returns the view context for it together
// with the decision after redirects were followed. The context is cancelled
// by the next navigation, including a redirect caused by a session change.
func (g *Gate) Enter(parent context.Context, path string) (context.Context, Decision) {
	return g.navigate(parent, path)
}

func (g *Gate) navigate(parent context.Context, path string) (context.Context, Decision) {
	g.mu.Lock()
	g.cancel()
	g.path = cleanPath(path)
	g.parent = parent
	ev, changed := g.evaluate()
	ctx := g.newView(parent)
	ev.View = ctx
	g.mu.Unlock()

	if changed {
		g.deliver(ev)
	}
	return ctx, ev.Decision
}

func (g *Gate) stateChanged() {
	g.mu.Lock()
	g.state = g.source.State()
	from := g.path
	ev, changed := g.evaluate()
	if g.path != from {
		// старый view отменён в evaluate, цель редиректа получает новый
		g.newView(g.parent)
	}
	ev.View = g.view
	g.mu.Unlock()

	if changed {
		g.deliver(ev)
	}
}

// newView starts the view for the current path. Caller holds mu.
func (g *Gate) newView(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	g.view = ctx
	return ctx
}

// evaluate recomputes the decision, following redirects. Caller holds mu.
func (g *Gate) evaluate() (Event, bool) {
	g.gen++
	d := Decide(g.state, g.path)

	for i := 0; d.Action == Redirect && i < maxRedirects; i++ {
		g.logger.Debug("route redirect",
			slog.String("from", d.Path),
			slog.String("to", d.Target),
			slog.String("state", g.state.String()),
		)
		// Редирект - это тоже навигация: старый view отменяется
		g.cancel()
		g.path = d.Target
		d = Decide(g.state, g.path)
	}

	changed := d != g.last
	g.last = d
	if changed {
		g.logger.Debug("route decision",
			slog.String("path", d.Path),
			slog.String("action", d.Action.String()),
			slog.String("state", g.state.String()),
		)
	}
	return Event{Generation: g.gen, Decision: d, State: g.state}, changed
}

func (g *Gate) deliver(ev Event) {
	g.deliverMu.Lock()
	defer g.deliverMu.Unlock()

	if ev.Generation <= g.delivered {
		return
	}
	g.delivered = ev.Generation

	g.mu.Lock()
	listeners := append([]func(Event){}, g.listeners...)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
