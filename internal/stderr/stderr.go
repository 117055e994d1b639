//go:build !windows

// Package stderr captures output that C libraries (ALSA, oto) write directly
// to file descriptor 2, bypassing os.Stderr. While the TUI owns the terminal
// those lines would tear the layout, so they are routed to a sink instead.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"syscall"
)

// Capture redirects fd 2 into a pipe until Stop is called.
type Capture struct {
	orig int
	r, w *os.File
	wg   sync.WaitGroup
	once sync.Once
}

// Start redirects fd 2 and calls sink for every non-blank captured line.
// On error nothing is redirected and the program can carry on without capture.
func Start(sink func(line string)) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w}
	c.wg.Go(func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				sink(line)
			}
		}
	})
	return c, nil
}

// WriteOriginal writes to the terminal's stderr, bypassing capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores fd 2 and waits for buffered lines to reach the sink.
func (c *Capture) Stop() {
	c.once.Do(func() {
		_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
		_ = syscall.Close(c.orig)
		c.w.Close()
		c.wg.Wait()
		c.r.Close()
	})
}
