package effects

import (
	"context"
	"fmt"
	"sync"
	"syscall"

	"github.com/godbus/dbus/v5"
)

const (
	logindDest = "org.freedesktop.login1"
	logindPath = "/org/freedesktop/login1"
)

// LogindWakeLock acquires idle/sleep inhibitors from systemd-logind. The
// inhibitor lives as long as the returned file descriptor stays open.
type LogindWakeLock struct {
	conn *dbus.Conn
}

// NewLogindWakeLock connects to the system bus.
func NewLogindWakeLock() (*LogindWakeLock, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}

	return &LogindWakeLock{conn: conn}, nil
}

// Acquire requests a blocking idle+sleep inhibitor for the ringing alarm.
func (w *LogindWakeLock) Acquire(ctx context.Context) (Lock, error) {
	obj := w.conn.Object(logindDest, logindPath)

	var fd dbus.UnixFD

	err := obj.CallWithContext(ctx, logindDest+".Manager.Inhibit", 0,
		"idle:sleep",
		"alarm-clock",
		"Alarm is ringing",
		"block",
	).Store(&fd)
	if err != nil {
		return nil, fmt.Errorf("inhibit idle: %w", err)
	}

	return &inhibitorLock{fd: fd}, nil
}

// Shutdown drops the bus connection. Held locks stay valid until released.
func (w *LogindWakeLock) Shutdown() error {
	return w.conn.Close()
}

// inhibitorLock holds the inhibitor fd; closing it releases the lock.
type inhibitorLock struct {
	fd   dbus.UnixFD
	once sync.Once
}

// Release closes the inhibitor fd. Safe to call more than once.
func (l *inhibitorLock) Release() error {
	var err error

	l.once.Do(func() {
		err = syscall.Close(int(l.fd))
	})

	return err
}
