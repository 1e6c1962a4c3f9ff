package iocli

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"sync"
)

// Buffer is an in-memory IO: input is consumed line by line, output is
// collected. Passwords are read from the same input.
type Buffer struct {
	in  *bufio.Reader
	out bytes.Buffer
	mu  sync.Mutex
}

// NewBuffer returns a Buffer that will answer prompts with the given lines.
func NewBuffer(lines ...string) *Buffer {
	input := strings.Join(lines, "\n")
	if len(lines) > 0 {
		input += "\n"
	}
	return &Buffer{in: bufio.NewReader(strings.NewReader(input))}
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.Write(p)
}

func (b *Buffer) Println(a ...any) {
	_, _ = fmt.Fprintln(b, a...)
}

func (b *Buffer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(b, format, a...)
}

func (b *Buffer) ReadInput(prompt string) (string, error) {
	b.Printf("%s", prompt)
	return readLine(b.in)
}

func (b *Buffer) ReadPassword(prompt string) (string, error) {
	return b.ReadInput(prompt)
}

// String returns everything written so far.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.String()
}
