package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/client/gate"
	"github.com/iudanet/fantasy11/internal/client/session"
	"github.com/iudanet/fantasy11/internal/validation"
)

var (
	// ErrLoginRequired is returned by commands bound to protected routes when nobody is logged in
	ErrLoginRequired = &api.AuthError{Message: "You need to log in first: run 'fantasy11 login'."}

	// ErrSessionLoading means the session state is not known yet
	ErrSessionLoading = errors.New("session is still loading, try again")

	// errViewLeft means a navigation (usually a logout or an expired session) replaced the view mid-command
	errViewLeft = errors.New("view was left")
)

// view enters route through the gate. ok is false when the gate redirected
// elsewhere; err then says why, or is nil when a notice was printed instead.
func (c *Cli) view(ctx context.Context, route string) (viewCtx context.Context, ok bool, err error) {
	viewCtx, d := c.gate.Enter(ctx, route)
	switch {
	case d.Action == gate.Placeholder:
		return nil, false, ErrSessionLoading
	case d.Path == route:
		return viewCtx, true, nil
	case d.Path == session.LoginPath:
		return nil, false, ErrLoginRequired
	case d.Path == session.HomePath:
		c.io.Printf("Already logged in as %s.\n", c.username())
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%s redirected to %s", route, d.Path)
	}
}

// viewErr translates a failure inside a view. A view cancelled by the gate
// while its parent is alive was left because of a navigation; the session
// manager reports ended sessions through ErrSessionEnded already.
func (c *Cli) viewErr(parent context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && parent.Err() == nil {
		if c.gate.Current().Path == session.LoginPath {
			return session.ErrSessionEnded
		}
		return errViewLeft
	}
	if errors.Is(err, context.Canceled) {
		// Прерывание пользователем (Ctrl+C) - не ошибка
		return nil
	}
	return err
}

// Message returns the text to print for an error returned by a command.
// API and validation failures get their display text; local failures
// (config, files, usage) are printed as is.
func Message(err error) string {
	var (
		verr *validation.Error
		aerr *api.AuthError
		nerr *api.NotFoundError
		serr *api.ServerError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &aerr), errors.As(err, &nerr),
		errors.As(err, &serr), api.IsNetwork(err):
		return api.UserMessage(err)
	}
	return err.Error()
}

func (c *Cli) username() string {
	if snap := c.session.Snapshot(); snap.User != nil {
		return snap.User.Username
	}
	return ""
}

func contestRoute(id string, rest ...string) string {
	return route(append([]string{"contests", id}, rest...)...)
}

func teamRoute(id string, rest ...string) string {
	return route(append([]string{"teams", id}, rest...)...)
}

func route(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// splitList разбирает "a, b,c" в список без пустых элементов
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
