// Package notify announces each new track with a desktop notification.
// Successive tracks replace the same notification, which carries previous
// and next buttons routed back into the media session.
package notify

import (
	"errors"
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/mediasession"
)

const (
	appName      = "Nebula"
	desktopEntry = "nebula"
	fallbackIcon = "audio-x-generic"
	timeoutMs    = 5000
)

// buttons are the actions offered on the notification, in display order.
var buttons = []struct {
	action mediasession.Action
	label  string
}{
	{mediasession.ActionPreviousTrack, "Previous"},
	{mediasession.ActionNextTrack, "Next"},
}

// message is one now-playing notification as handed to a backend.
type message struct {
	Summary    string
	Body       string // markup-escaped
	Icon       string // file path or themed icon name
	ReplacesID uint32
	Actions    []mediasession.Action
}

// invocation is a button press reported by the notification server.
type invocation struct {
	id     uint32
	action mediasession.Action
}

// backend delivers messages to the desktop.
type backend interface {
	show(m message) (uint32, error)
	dismiss(id uint32) error
	// invoked reports button presses. Nil when buttons are unsupported.
	invoked() <-chan invocation
	close() error
}

// Notifier is a mediasession.Surface backed by desktop notifications.
type Notifier struct {
	backend backend

	mu       sync.Mutex
	lastID   uint32
	handlers map[mediasession.Action]func()

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// New connects to the desktop notification server.
func New() (*Notifier, error) {
	b, err := newBackend()
	if err != nil {
		return nil, err
	}
	return newNotifier(b), nil
}

func newNotifier(b backend) *Notifier {
	n := &Notifier{
		backend:  b,
		handlers: make(map[mediasession.Action]func()),
		done:     make(chan struct{}),
	}
	if ch := b.invoked(); ch != nil {
		n.wg.Go(func() { n.dispatch(ch) })
	}
	return n
}

// dispatch runs the handler of buttons pressed on the current notification.
func (n *Notifier) dispatch(ch <-chan invocation) {
	for {
		select {
		case <-n.done:
			return
		case inv, ok := <-ch:
			if !ok {
				return
			}
			n.mu.Lock()
			h := n.handlers[inv.action]
			current := inv.id != 0 && inv.id == n.lastID
			n.mu.Unlock()
			if current && h != nil {
				h()
			}
		}
	}
}

// SetMetadata implements mediasession.Surface.
func (n *Notifier) SetMetadata(m mediasession.Metadata) {
	n.mu.Lock()
	defer n.mu.Unlock()

	msg := message{
		Summary:    m.Title,
		Body:       body(m),
		Icon:       icon(m),
		ReplacesID: n.lastID,
	}
	for _, b := range buttons {
		if n.handlers[b.action] != nil {
			msg.Actions = append(msg.Actions, b.action)
		}
	}

	id, err := n.backend.show(msg)
	if err != nil {
		log.Warn().Err(err).Str("track", m.TrackID).Msg("notify: now playing")
		return
	}
	n.lastID = id
}

// SetActionHandler implements mediasession.Surface. Only previous and next
// get a button; other actions are ignored.
func (n *Notifier) SetActionHandler(a mediasession.Action, h func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, b := range buttons {
		if b.action != a {
			continue
		}
		if h == nil {
			delete(n.handlers, a)
		} else {
			n.handlers[a] = h
		}
	}
}

// Close dismisses the current notification and disconnects.
func (n *Notifier) Close() error {
	var err error
	n.once.Do(func() {
		close(n.done)
		n.wg.Wait()

		n.mu.Lock()
		id := n.lastID
		n.lastID = 0
		n.mu.Unlock()
		if id != 0 {
			err = n.backend.dismiss(id)
		}
		err = errors.Join(err, n.backend.close())
	})
	return err
}

func body(m mediasession.Metadata) string {
	parts := make([]string, 0, 2)
	if m.Artist != "" {
		parts = append(parts, m.Artist)
	}
	if m.Album != "" {
		parts = append(parts, m.Album)
	}
	return html.EscapeString(strings.Join(parts, " · "))
}

// icon returns a local image path for file:// artwork. Remote artwork is not
// fetched; the themed audio icon is used instead.
func icon(m mediasession.Metadata) string {
	if len(m.Artwork) == 0 {
		return fallbackIcon
	}
	u, err := url.Parse(m.Artwork[0].Src)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return fallbackIcon
	}
	return u.Path
}
