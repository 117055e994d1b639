//go:build linux

package notify

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/llehouerou/nebula/internal/mediasession"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
	dbusActionInvoked   = "ActionInvoked"

	urgencyLow byte = 0
)

// dbusBackend talks to the freedesktop notification server over a private
// session bus connection.
type dbusBackend struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	signals chan *dbus.Signal
	events  chan invocation
}

func newBackend() (backend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("notify: session bus: %w", err)
	}
	b := &dbusBackend{conn: conn, obj: conn.Object(dbusNotifyDest, dbusNotifyPath)}

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
		dbus.WithMatchMember(dbusActionInvoked),
	)
	if err != nil {
		// Notifications still work, only without buttons.
		return b, nil //nolint:nilerr
	}
	b.signals = make(chan *dbus.Signal, 8)
	b.events = make(chan invocation, 8)
	conn.Signal(b.signals)
	go b.forward()
	return b, nil
}

// forward turns ActionInvoked signals into invocations. It ends when the
// connection closes its signal channel.
func (b *dbusBackend) forward() {
	defer close(b.events)
	for sig := range b.signals {
		inv, ok := parseActionInvoked(sig)
		if !ok {
			continue
		}
		select {
		case b.events <- inv:
		default:
		}
	}
}

func (b *dbusBackend) show(m message) (uint32, error) {
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout) -> id
	call := b.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		appName,
		m.ReplacesID,
		m.Icon,
		m.Summary,
		m.Body,
		actionList(m.Actions),
		hintsFor(m),
		int32(timeoutMs),
	)
	if call.Err != nil {
		return 0, call.Err
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *dbusBackend) dismiss(id uint32) error {
	return b.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

func (b *dbusBackend) invoked() <-chan invocation {
	if b.events == nil {
		return nil
	}
	return b.events
}

func (b *dbusBackend) close() error {
	return b.conn.Close()
}

// actionList flattens actions into the key/label pairs the server expects.
func actionList(actions []mediasession.Action) []string {
	out := make([]string, 0, 2*len(actions))
	for _, a := range actions {
		for _, b := range buttons {
			if b.action == a {
				out = append(out, string(a), b.label)
			}
		}
	}
	return out
}

func hintsFor(m message) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgencyLow),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
		"category":      dbus.MakeVariant("x-nebula.nowplaying"),
		"transient":     dbus.MakeVariant(true),
	}
	if strings.HasPrefix(m.Icon, "/") {
		hints["image-path"] = dbus.MakeVariant(m.Icon)
	}
	return hints
}

func parseActionInvoked(sig *dbus.Signal) (invocation, bool) {
	if sig == nil || sig.Name != dbusNotifyInterface+"."+dbusActionInvoked || len(sig.Body) != 2 {
		return invocation{}, false
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return invocation{}, false
	}
	key, ok := sig.Body[1].(string)
	if !ok {
		return invocation{}, false
	}
	for _, b := range buttons {
		if string(b.action) == key {
			return invocation{id: id, action: b.action}, true
		}
	}
	return invocation{}, false
}
