package storage

import "errors"

// ErrNotFound is returned by KV and Cache lookups that find nothing.
var ErrNotFound = errors.New("not found in local storage")
