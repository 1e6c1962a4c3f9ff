package storage

import "errors"

// Lookup misses.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenNotFound   = errors.New("refresh token not found")
	ErrContestNotFound = errors.New("contest not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAvatarNotFound  = errors.New("avatar not found")
)

// Uniqueness violations.
var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrAlreadyEnrolled   = errors.New("team already enrolled")
)
