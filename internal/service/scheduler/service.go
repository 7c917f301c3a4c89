package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/session"
)

var (
	// ErrAlarmNotFound is returned when an operation names an unknown alarm ID.
	ErrAlarmNotFound = errors.New("alarm not found")
	// ErrNoActiveSession is returned when snooze or dismiss finds nothing ringing.
	ErrNoActiveSession = errors.New("no alarm is ringing")
)

// Config carries the evaluation parameters the scheduler polls with.
type Config struct {
	// ForegroundInterval is the period of the attached evaluation ticker.
	ForegroundInterval time.Duration
	// ForegroundTolerance is the fire window used by the ticker and by Poke.
	ForegroundTolerance time.Duration
	// DefaultSnoozeMinutes fills the snooze duration of alarms created without one.
	DefaultSnoozeMinutes int
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Service owns the in-memory alarm collection and decides when alarms fire.
//
// Every mutation persists the whole collection through the repository;
// persistence failures are logged and the in-memory state stays authoritative
// for the rest of the process lifetime.
type Service struct {
	cfg     Config
	repo    alarms.Repository
	session *session.Controller

	mu     sync.Mutex
	alarms map[string]*domain.Alarm

	onFire func(a *domain.Alarm)
	now    func() time.Time
}

// New builds the scheduler and loads the persisted collection. A load failure
// is not fatal, the scheduler starts with an empty collection.
func New(ctx context.Context, cfg Config, repo alarms.Repository, sess *session.Controller) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Service{
		cfg:     cfg,
		repo:    repo,
		session: sess,
		alarms:  make(map[string]*domain.Alarm),
		now:     now,
	}

	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Failed to load alarms, starting with an empty collection", "error", err)

		return s
	}

	for _, a := range loaded {
		s.alarms[a.ID] = a
	}

	logger.InfoKV(ctx, "Alarm collection loaded", "count", len(loaded))

	return s
}

// OnFire registers a callback invoked once per opened ringing session, outside
// the collection lock. Set it before the evaluation loops start.
func (s *Service) OnFire(fn func(a *domain.Alarm)) {
	s.onFire = fn
}

// Add creates an alarm from the spec and persists the collection.
func (s *Service) Add(ctx context.Context, spec domain.Spec) (*domain.Alarm, error) {
	if spec.SnoozeMinutes == 0 {
		spec.SnoozeMinutes = s.cfg.DefaultSnoozeMinutes
	}

	a, err := domain.New(spec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.alarms[a.ID] = a
	s.persistLocked(ctx)
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm added", "alarm", a.String())

	return a.Clone(), nil
}

// Update replaces every caller-editable field of the alarm. A pending snooze
// is cleared, the edited schedule starts from a clean slate.
func (s *Service) Update(ctx context.Context, id string, spec domain.Spec) (*domain.Alarm, error) {
	if spec.SnoozeMinutes == 0 {
		spec.SnoozeMinutes = s.cfg.DefaultSnoozeMinutes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		return nil, ErrAlarmNotFound
	}

	updated := &domain.Alarm{
		ID:            a.ID,
		Hour:          spec.Hour,
		Minute:        spec.Minute,
		Label:         spec.Label,
		Enabled:       spec.Enabled,
		Repeat:        spec.Repeat,
		Weekdays:      spec.Weekdays,
		Sound:         spec.Sound,
		CustomSound:   spec.CustomSound,
		SnoozeMinutes: spec.SnoozeMinutes,
		Vibration:     spec.Vibration,
		GradualVolume: spec.GradualVolume,
	}

	if updated.Label == "" {
		updated.Label = domain.DefaultLabel
	}

	if updated.Repeat == "" {
		updated.Repeat = a.Repeat
	}

	if updated.Sound == "" {
		updated.Sound = a.Sound
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.alarms[id] = updated
	s.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm updated", "alarm", updated.String())

	return updated.Clone(), nil
}

// Remove deletes the alarm and persists the collection. Removing an ID that
// is not present is a no-op.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alarms[id]; !ok {
		return nil
	}

	delete(s.alarms, id)
	s.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm removed", "alarm_id", id)

	return nil
}

// Toggle enables or disables the alarm. Disabling drops a pending snooze so
// the alarm stays quiet until it is re-enabled.
func (s *Service) Toggle(ctx context.Context, id string, enabled bool) (*domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		return nil, ErrAlarmNotFound
	}

	a.Enabled = enabled
	if !enabled {
		a.SnoozedUntil = nil
	}

	s.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm toggled", "alarm_id", id, "enabled", enabled)

	return a.Clone(), nil
}

// Get returns a copy of the alarm.
func (s *Service) Get(ctx context.Context, id string) (*domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		return nil, ErrAlarmNotFound
	}

	return a.Clone(), nil
}

// List returns copies of every alarm ordered by wall-clock time, then ID.
func (s *Service) List(_ context.Context) []*domain.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection := make([]*domain.Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		collection = append(collection, a.Clone())
	}

	sort.Slice(collection, func(i, j int) bool {
		a, b := collection[i], collection[j]
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}

		if a.Minute != b.Minute {
			return a.Minute < b.Minute
		}

		return a.ID < b.ID
	})

	return collection
}

// Evaluate computes the next trigger of every enabled alarm and opens a
// ringing session for the first one whose trigger lies within the tolerance
// window around now. At most one session exists system-wide, so further
// matches in the same pass are dropped by the session gate. A fired one-shot
// alarm is disabled before the collection is persisted.
//
// Returns the number of sessions opened, which is zero or one.
func (s *Service) Evaluate(ctx context.Context, now time.Time, tolerance time.Duration) int {
	s.mu.Lock()

	var due []*domain.Alarm

	for _, a := range s.alarms {
		if !a.Enabled {
			continue
		}

		next, err := domain.NextTrigger(a, now)
		if err != nil {
			logger.ErrorKV(ctx, "Skipping unschedulable alarm", "alarm_id", a.ID, "error", err)
			continue
		}

		if next.Sub(now).Abs() < tolerance {
			due = append(due, a.Clone())
		}
	}

	s.mu.Unlock()

	fired := 0

	for _, a := range due {
		if !s.session.TryOpen(ctx, a, now) {
			continue
		}

		fired++

		s.mu.Lock()

		if cur, ok := s.alarms[a.ID]; ok {
			if cur.Repeat == domain.RepeatOnce {
				cur.Enabled = false
			}

			a = cur.Clone()
		}

		s.persistLocked(ctx)
		s.mu.Unlock()

		if s.onFire != nil {
			s.onFire(a)
		}
	}

	return fired
}

// Poke runs an immediate evaluation with the foreground tolerance. The control
// surface calls it when a client wants a freshly caught-up state.
func (s *Service) Poke(ctx context.Context) int {
	return s.Evaluate(ctx, s.now(), s.cfg.ForegroundTolerance)
}

// Snooze closes the ringing session, sets the alarm's snooze instant to
// now + its snooze duration, and persists the collection. The record is
// mutated under the collection lock, never by the session controller.
func (s *Service) Snooze(ctx context.Context) (*domain.Alarm, error) {
	id, ok := s.session.Snooze(ctx)
	if !ok {
		return nil, ErrNoActiveSession
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		// Removed while it was ringing.
		return nil, ErrAlarmNotFound
	}

	until := now.Add(time.Duration(a.SnoozeMinutes) * time.Minute)
	a.SnoozedUntil = &until
	s.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm snoozed", "alarm_id", id, "until", until)

	return a.Clone(), nil
}

// Dismiss closes the ringing session and persists the collection. A pending
// snooze instant is cleared so a dismissed alarm cannot re-fire at a stale
// snooze time; a recurring alarm stays scheduled for its next occurrence, a
// one-shot stays disabled (flipped at fire time).
func (s *Service) Dismiss(ctx context.Context) (*domain.Alarm, error) {
	id, ok := s.session.Dismiss(ctx)
	if !ok {
		return nil, ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		// Removed while it was ringing.
		return nil, ErrAlarmNotFound
	}

	a.SnoozedUntil = nil
	s.persistLocked(ctx)

	logger.InfoKV(ctx, "Alarm dismissed", "alarm_id", id)

	return a.Clone(), nil
}

// Ringing returns a copy of the open session, or nil when nothing is ringing.
func (s *Service) Ringing() *session.Ringing {
	return s.session.Current()
}

// RunForeground evaluates on every tick of the foreground interval until the
// context is cancelled. This is the high-resolution polling context; the
// coarse background schedule is attached by the caller.
func (s *Service) RunForeground(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ForegroundInterval)
	defer ticker.Stop()

	logger.InfoKV(ctx, "Foreground evaluation loop started",
		"interval", s.cfg.ForegroundInterval, "tolerance", s.cfg.ForegroundTolerance)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Foreground evaluation loop stopped")
			return
		case now := <-ticker.C:
			s.Evaluate(ctx, now, s.cfg.ForegroundTolerance)
		}
	}
}

// persistLocked writes the whole collection. Callers hold s.mu. A storage
// failure is logged and swallowed, scheduling continues from memory.
func (s *Service) persistLocked(ctx context.Context) {
	collection := make([]*domain.Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		collection = append(collection, a)
	}

	if err := s.repo.SaveAll(ctx, collection); err != nil {
		logger.WarnKV(ctx, "Failed to persist alarms, keeping in-memory state", "error", err)
	}
}
