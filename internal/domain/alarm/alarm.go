package alarm

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RepeatMode describes how an alarm recurs.
type RepeatMode string

const (
	// RepeatOnce fires a single time and is disabled afterwards.
	RepeatOnce RepeatMode = "once"
	// RepeatDaily fires every day at the same wall-clock time.
	RepeatDaily RepeatMode = "daily"
	// RepeatCustom fires on a chosen set of weekdays.
	RepeatCustom RepeatMode = "custom"
)

// SoundKind selects the audio pattern an alarm rings with.
type SoundKind string

const (
	// SoundDefault is a plain repeating beep.
	SoundDefault SoundKind = "default"
	// SoundGentle is a soft low tone with a slow envelope.
	SoundGentle SoundKind = "gentle"
	// SoundRadar is a sequence of short high pips.
	SoundRadar SoundKind = "radar"
	// SoundBell is a decaying strike with harmonics.
	SoundBell SoundKind = "bell"
	// SoundCustom replays a user-supplied audio payload.
	SoundCustom SoundKind = "custom"
)

// DefaultLabel is used when an alarm is created without one.
const DefaultLabel = "Alarm"

var (
	// ErrEmptyWeekdays is returned when a custom repeat has no weekday selected.
	ErrEmptyWeekdays = errors.New("select at least one day")
	// ErrInvalidTime is returned when hour or minute is out of range.
	ErrInvalidTime = errors.New("invalid alarm time")
	// ErrInvalidSnooze is returned when the snooze duration is not positive.
	ErrInvalidSnooze = errors.New("snooze duration must be positive")
	// ErrInvalidRepeat is returned for an unknown repeat mode.
	ErrInvalidRepeat = errors.New("invalid repeat mode")
)

// WeekdaySet is a bitmask over time.Weekday (Sunday = bit 0).
type WeekdaySet uint8

// NewWeekdaySet builds a set from the provided weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}

	return s
}

// Contains reports whether the weekday is a member of the set.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// IsEmpty reports whether no weekday is selected.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days returns the members in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)

	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}

	return days
}

// Alarm is a schedule definition. The ID is assigned at creation and never
// changes; everything else may be replaced through an update.
type Alarm struct {
	// ID uniquely identifies the alarm across the collection.
	ID string `json:"id"`
	// Hour is the nominal wall-clock fire hour (0-23).
	Hour int `json:"hour"`
	// Minute is the nominal wall-clock fire minute (0-59).
	Minute int `json:"minute"`
	// Label is the display string shown while ringing.
	Label string `json:"label"`
	// Enabled gates evaluation; disabled alarms never fire.
	Enabled bool `json:"enabled"`
	// Repeat selects the recurrence mode.
	Repeat RepeatMode `json:"repeat"`
	// Weekdays is meaningful only when Repeat is RepeatCustom and must then
	// be non-empty.
	Weekdays WeekdaySet `json:"weekdays,omitempty"`
	// Sound selects the generated pattern, or SoundCustom for CustomSound.
	Sound SoundKind `json:"sound"`
	// CustomSound is the opaque audio payload replayed when Sound is SoundCustom.
	CustomSound []byte `json:"custom_sound,omitempty"`
	// SnoozeMinutes postpones the alarm by this many minutes on snooze.
	SnoozeMinutes int `json:"snooze_minutes"`
	// Vibration enables a repeating vibration pattern while ringing.
	Vibration bool `json:"vibration"`
	// GradualVolume ramps playback gain up instead of snapping to full level.
	GradualVolume bool `json:"gradual_volume"`
	// SnoozedUntil, while in the future, overrides the recurrence-computed
	// trigger. It is cleared the next time the trigger is computed after it
	// has passed.
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
}

// Spec carries the caller-supplied fields for creating or updating an alarm.
// Zero values fall back to defaults in New.
type Spec struct {
	Hour          int
	Minute        int
	Label         string
	Enabled       bool
	Repeat        RepeatMode
	Weekdays      WeekdaySet
	Sound         SoundKind
	CustomSound   []byte
	SnoozeMinutes int
	Vibration     bool
	GradualVolume bool
}

// New constructs an alarm from the spec, assigning a fresh ID and filling
// defaults for omitted fields. The result is validated.
func New(spec Spec) (*Alarm, error) {
	a := &Alarm{
		ID:            uuid.New().String(),
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

	if a.Label == "" {
		a.Label = DefaultLabel
	}

	if a.Repeat == "" {
		a.Repeat = RepeatOnce
	}

	if a.Sound == "" {
		a.Sound = SoundDefault
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks the alarm invariants enforced at the mutation boundary.
// A custom repeat with an empty weekday set never reaches the resolver.
func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 || a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, a.Hour, a.Minute)
	}

	switch a.Repeat {
	case RepeatOnce, RepeatDaily:
	case RepeatCustom:
		if a.Weekdays.IsEmpty() {
			return ErrEmptyWeekdays
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, a.Repeat)
	}

	if a.SnoozeMinutes <= 0 {
		return ErrInvalidSnooze
	}

	return nil
}

// Clone returns a deep copy of the alarm to avoid leaking internal references.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	if a.SnoozedUntil != nil {
		t := *a.SnoozedUntil
		cloned.SnoozedUntil = &t
	}

	if a.CustomSound != nil {
		cloned.CustomSound = make([]byte, len(a.CustomSound))
		copy(cloned.CustomSound, a.CustomSound)
	}

	return &cloned
}

// String renders the alarm for logs.
func (a *Alarm) String() string {
	return fmt.Sprintf("%s %02d:%02d (%s, %s)", a.ID, a.Hour, a.Minute, a.Label, a.Repeat)
}
