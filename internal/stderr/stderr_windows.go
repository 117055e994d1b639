//go:build windows

// Package stderr is a no-op on Windows, where the audio backends do not write
// to fd 2 behind Go's back.
package stderr

import "os"

// Capture does nothing on Windows.
type Capture struct{}

// Start returns a Capture that leaves stderr alone.
func Start(func(line string)) (*Capture, error) {
	return &Capture{}, nil
}

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op on Windows.
func (c *Capture) Stop() {}
