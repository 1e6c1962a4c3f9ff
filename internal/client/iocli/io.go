// Package iocli abstracts the terminal so commands can be driven by tests.
package iocli

import "io"

//go:generate moq -out io_mock.go . IO

// IO is the terminal of an interactive command.
type IO interface {
	io.Writer
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadInput prints prompt and returns the next line without surrounding spaces.
	ReadInput(prompt string) (string, error)
	// ReadPassword prints prompt and reads a line without echo when possible.
	ReadPassword(prompt string) (string, error)
}
