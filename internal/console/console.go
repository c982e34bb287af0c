// Package console implements the notifier and confirmation prompt on a
// terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console writes alerts to out and reads answers from in.
//
// A single goroutine reads in, one line at a time, for the life of the
// Console. A line typed after its prompt was cancelled answers the next one.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
	// AssumeYes answers every confirmation affirmatively without reading.
	AssumeYes bool

	readOnce sync.Once
	lines    chan answer
	// readErr is the error that ended the reader; set before lines is closed.
	readErr error
}

type answer struct {
	line string
	err  error
}

// New creates a Console.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{out: out, in: bufio.NewReader(in)}
}

// Alert prints an error message.
func (c *Console) Alert(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "✗ %s\n", msg)
}

// Success prints a confirmation message.
func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "✓ %s\n", msg)
}

// Confirm asks prompt and waits for s/si/y/yes. Anything else, including EOF,
// is a no.
func (c *Console) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}

	c.mu.Lock()
	fmt.Fprintf(c.out, "%s [s/N]: ", prompt)
	c.mu.Unlock()

	c.readOnce.Do(c.startReader)

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a, ok := <-c.lines:
		if !ok {
			a.err = c.readErr
		}
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "s", "si", "sí", "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// startReader feeds lines until in fails, then closes the channel.
func (c *Console) startReader() {
	c.lines = make(chan answer)
	go func() {
		for {
			line, err := c.in.ReadString('\n')
			c.lines <- answer{line, err}
			if err != nil {
				c.readErr = err
				close(c.lines)
				return
			}
		}
	}()
}
