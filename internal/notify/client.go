package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// dbusNotifier sends notifications to whichever daemon owns the
// notification bus name.
type dbusNotifier struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &dbusNotifier{conn: conn, obj: conn.Object(busName, objectPath)}, nil
}

func messageHints(m Message) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(m.Urgency)),
	}
	if m.SoundName != "" {
		hints["sound-name"] = dbus.MakeVariant(m.SoundName)
	}
	if m.SoundFile != "" {
		hints["sound-file"] = dbus.MakeVariant(m.SoundFile)
	}
	if m.SuppressSound {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	return hints
}

// Notify sends a notification via D-Bus.
func (n *dbusNotifier) Notify(m Message) (uint32, error) {
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		interfaceName+".Notify",
		0,
		m.AppName,
		m.ReplacesID,
		m.Icon,
		m.Summary,
		m.Body,
		[]string{},
		messageHints(m),
		m.Timeout,
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

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(interfaceName+".CloseNotification", 0, id).Err
}
