package effects

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = "/org/freedesktop/Notifications"
	actionSignalName   = notificationsDest + ".ActionInvoked"
	notificationAppID  = "alarm-clock"
	notificationIcon   = "alarm-symbolic"
	signalBufferLength = 16
)

// DBusNotifier posts ringing notifications through the desktop notification
// service and reports snooze/dismiss action picks through a callback.
type DBusNotifier struct {
	conn     *dbus.Conn
	onAction func(ctx context.Context, action string)
	signals  chan *dbus.Signal
}

// NewDBusNotifier connects to the session bus and starts watching for
// ActionInvoked signals. onAction receives ActionSnooze or ActionDismiss.
func NewDBusNotifier(ctx context.Context, onAction func(ctx context.Context, action string)) (*DBusNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface(notificationsDest),
		dbus.WithMatchMember("ActionInvoked"),
	)
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("subscribe to notification actions: %w", err)
	}

	n := &DBusNotifier{
		conn:     conn,
		onAction: onAction,
		signals:  make(chan *dbus.Signal, signalBufferLength),
	}

	conn.Signal(n.signals)
	go n.watchActions(ctx)

	return n, nil
}

// watchActions forwards snooze/dismiss picks until the signal channel closes.
func (n *DBusNotifier) watchActions(ctx context.Context) {
	for sig := range n.signals {
		if sig.Name != actionSignalName || len(sig.Body) < 2 {
			continue
		}

		action, ok := sig.Body[1].(string)
		if !ok {
			continue
		}

		if action != ActionSnooze && action != ActionDismiss {
			continue
		}

		logger.DebugKV(ctx, "Notification action invoked", "action", action)

		if n.onAction != nil {
			n.onAction(ctx, action)
		}
	}
}

// Show posts a persistent, critical-urgency notification carrying snooze and
// dismiss actions and returns the server-assigned handle.
func (n *DBusNotifier) Show(ctx context.Context, title, body, tag string) (uint32, error) {
	obj := n.conn.Object(notificationsDest, notificationsPath)

	var id uint32

	err := obj.CallWithContext(ctx, notificationsDest+".Notify", 0,
		notificationAppID,
		uint32(0),
		notificationIcon,
		title,
		body,
		[]string{ActionSnooze, "Snooze", ActionDismiss, "Dismiss"},
		map[string]dbus.Variant{
			"urgency":           dbus.MakeVariant(byte(2)),
			"resident":          dbus.MakeVariant(true),
			"x-alarm-clock-tag": dbus.MakeVariant(tag),
		},
		int32(0), // Never expire on its own; the orchestrator withdraws it.
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("post notification: %w", err)
	}

	return id, nil
}

// Close withdraws a previously posted notification.
func (n *DBusNotifier) Close(ctx context.Context, handle uint32) error {
	obj := n.conn.Object(notificationsDest, notificationsPath)

	if call := obj.CallWithContext(ctx, notificationsDest+".CloseNotification", 0, handle); call.Err != nil {
		return fmt.Errorf("close notification: %w", call.Err)
	}

	return nil
}

// Shutdown drops the bus connection; pending signal deliveries stop.
func (n *DBusNotifier) Shutdown() error {
	n.conn.RemoveSignal(n.signals)

	return n.conn.Close()
}
