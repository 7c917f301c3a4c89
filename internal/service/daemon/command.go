package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/alarm-clock/internal/api/rpc"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/effects"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
	"github.com/oshokin/alarm-clock/internal/service/session"
	"github.com/oshokin/alarm-clock/internal/sound"
)

// Options controls the alarm-daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// SocketPath overrides the control socket location from the settings.
	SocketPath string
	// DataDir overrides the alarm database directory from the settings.
	DataDir string
	// LogLevel overrides the log verbosity from the settings.
	LogLevel string
}

// soundAdapter exposes the sound engine through the orchestrator's sink
// interface without leaking the concrete playback type.
type soundAdapter struct {
	engine *sound.Engine
}

func (s soundAdapter) Play(
	ctx context.Context,
	kind domain.SoundKind,
	customPayload []byte,
	gradualVolume bool,
) (effects.SoundPlayback, error) {
	p, err := s.engine.Play(ctx, kind, customPayload, gradualVolume)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Run starts the scheduling engine and blocks until the context is cancelled.
// Host integrations that cannot be set up (desktop notifications, the wake
// lock) are skipped with a warning; the daemon still schedules and rings.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-daemon")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	repo, err := alarms.OpenBadger(alarms.Options{Path: settings.DataDir})
	if err != nil {
		return fmt.Errorf("open alarm database: %w", err)
	}
	defer repo.Close()

	// The scheduler is assigned below; notification actions only arrive once
	// an alarm has fired, long after it exists.
	var sched *scheduler.Service

	onAction := func(ctx context.Context, action string) {
		if sched == nil {
			return
		}

		var err error

		switch action {
		case effects.ActionSnooze:
			_, err = sched.Snooze(ctx)
		case effects.ActionDismiss:
			_, err = sched.Dismiss(ctx)
		default:
			return
		}

		if err != nil {
			logger.WarnKV(ctx, "Notification action failed", "action", action, "error", err)
		}
	}

	var notification effects.NotificationSink

	notifier, err := effects.NewDBusNotifier(ctx, onAction)
	if err != nil {
		logger.WarnKV(ctx, "Desktop notifications unavailable", "error", err)
	} else {
		notification = notifier
		defer notifier.Shutdown()
	}

	var wakeLockSink effects.WakeLockSink

	wakeLock, err := effects.NewLogindWakeLock()
	if err != nil {
		logger.WarnKV(ctx, "Wake lock unavailable", "error", err)
	} else {
		wakeLockSink = wakeLock
		defer wakeLock.Shutdown()
	}

	engine := sound.NewEngine()
	orchestrator := effects.NewOrchestrator(
		soundAdapter{engine: engine},
		notification,
		effects.NoopVibrator{},
		wakeLockSink,
	)

	sched = scheduler.New(ctx, scheduler.Config{
		ForegroundInterval:   settings.ForegroundInterval,
		ForegroundTolerance:  settings.ForegroundTolerance,
		DefaultSnoozeMinutes: settings.DefaultSnoozeMinutes,
	}, repo, session.NewController(orchestrator))

	rpcServer := rpc.NewServer(sched)
	sched.OnFire(func(a *domain.Alarm) {
		rpcServer.BroadcastFired(ctx, a)
	})

	listener, err := listenControlSocket(ctx, settings.SocketPath)
	if err != nil {
		return err
	}
	defer os.Remove(settings.SocketPath)

	background := cron.New(cron.WithSeconds())

	_, err = background.AddFunc(settings.BackgroundSpec, func() {
		sched.Evaluate(ctx, time.Now(), settings.BackgroundTolerance)
	})
	if err != nil {
		return fmt.Errorf("schedule background evaluation %q: %w", settings.BackgroundSpec, err)
	}

	background.Start()

	logger.InfoKV(ctx, "Alarm daemon started",
		"socket", settings.SocketPath,
		"data_dir", settings.DataDir,
		"background_spec", settings.BackgroundSpec)

	go sched.RunForeground(ctx)

	serveErr := rpcServer.Serve(ctx, listener)

	// Teardown mirrors startup in reverse. A ringing session is silenced so
	// no effect survives the process.
	<-background.Stop().Done()
	orchestrator.Stop(ctx)

	logger.Info(ctx, "Alarm daemon stopped")

	if serveErr != nil {
		return fmt.Errorf("serve control socket: %w", serveErr)
	}

	return nil
}

// applyOverrides lets command-line options win over the settings file.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.SocketPath != "" {
		settings.SocketPath = opts.SocketPath
	}

	if opts.DataDir != "" {
		settings.DataDir = opts.DataDir
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
}

// listenControlSocket binds the unix socket, clearing a stale file left by a
// previous run.
func listenControlSocket(ctx context.Context, path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}

	return listener, nil
}
