//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	busMethod = busName + ".Notify"
	busClose  = busName + ".CloseNotification"

	appName = "wavesplay"
)

// dbusNotifier talks to the freedesktop notification daemon.
type dbusNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. It fails when there is no bus, and the
// caller decides whether to fall back to Disabled.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &dbusNotifier{obj: conn.Object(busName, busPath)}, nil
}

// hints are the freedesktop hints sent with every notification.
func (n Notification) hints() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
	}
}

func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	var id uint32
	err := n.obj.Call(busMethod, 0,
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		notif.flatActions(),
		notif.hints(),
		notif.Timeout,
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

func (n *dbusNotifier) Close(id uint32) error {
	if id == 0 {
		return nil
	}
	return n.obj.Call(busClose, 0, id).Err
}
