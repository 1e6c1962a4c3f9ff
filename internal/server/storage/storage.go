// Package storage defines the persistence contracts of the dev server.
package storage

import "context"

// Storage is everything the dev server persists.
type Storage interface {
	UserStorage
	TokenStorage
	ContestStorage
	TeamStorage
	EnrollmentStorage

	Ping(ctx context.Context) error
	Close() error
}
