package session

import (
	"time"

	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// Navigation targets signalled by the manager.
const (
	HomePath  = "/home"
	LoginPath = "/auth/login"
)

// State is the authentication state of the session.
type State int

const (
	StateUnknown State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Resolved reports whether the state is final enough for routing decisions.
func (s State) Resolved() bool {
	return s == StateAuthenticated || s == StateAnonymous
}

// Verification tracks whether the user shown was confirmed by the server.
type Verification int

const (
	VerificationNone Verification = iota
	// CachedUnverified: пользователь восстановлен из кэша, /users/me ещё не ответил
	CachedUnverified
	Verified
)

func (v Verification) String() string {
	switch v {
	case CachedUnverified:
		return "cached"
	case Verified:
		return "verified"
	default:
		return "none"
	}
}

// Persistence says where the refresh token lives.
type Persistence int

const (
	PersistenceNone Persistence = iota
	Remembered                  // durable storage, survives restarts
	SessionOnly                 // ephemeral storage, gone with the process
)

func (p Persistence) String() string {
	switch p {
	case Remembered:
		return "remembered"
	case SessionOnly:
		return "session-only"
	default:
		return "none"
	}
}

// Snapshot is an immutable copy of the session observed by views.
type Snapshot struct {
	User         *pkgapi.User
	ExpiresAt    time.Time // zero when the token carries no exp claim
	State        State
	Verification Verification
	Persistence  Persistence
}

// Authenticated is a shortcut for State == StateAuthenticated.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}
