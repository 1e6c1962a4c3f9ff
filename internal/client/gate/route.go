package gate

import (
	"strings"

	"github.com/iudanet/fantasy11/internal/client/session"
)

// RouteClass is the access class of a route.
type RouteClass int

const (
	Protected     RouteClass = iota // всё, что не перечислено ниже
	PublicLanding                   // ровно "/"
	AuthFlow                        // "/auth" и "/auth/..."
)

func (c RouteClass) String() string {
	switch c {
	case PublicLanding:
		return "public-landing"
	case AuthFlow:
		return "auth-flow"
	default:
		return "protected"
	}
}

// Classify returns the class of path. Query and fragment are ignored.
func Classify(path string) RouteClass {
	path = cleanPath(path)
	switch {
	case path == "/":
		return PublicLanding
	case path == "/auth" || strings.HasPrefix(path, "/auth/"):
		return AuthFlow
	default:
		return Protected
	}
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Action is what the view for a route should do.
type Action int

const (
	Placeholder Action = iota // сессия ещё не определена: нейтральная заглушка
	Render
	Redirect
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "placeholder"
	}
}

// Decision is the outcome of gating one (state, path) pair.
type Decision struct {
	Path   string // путь, к которому относится решение
	Target string // куда перенаправить, только для Redirect
	Action Action
}

// Decide gates path for the given session state. It is a pure function of
// its two inputs.
func Decide(state session.State, path string) Decision {
	path = cleanPath(path)
	if !state.Resolved() {
		return Decision{Path: path, Action: Placeholder}
	}

	class := Classify(path)
	switch {
	case state == session.StateAuthenticated && class == PublicLanding:
		return Decision{Path: path, Action: Redirect, Target: session.HomePath}
	case state != session.StateAuthenticated && class == Protected:
		return Decision{Path: path, Action: Redirect, Target: session.LoginPath}
	default:
		return Decision{Path: path, Action: Render}
	}
}
