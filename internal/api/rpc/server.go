package rpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Custom JSON-RPC error codes for alarm operations.
const (
	codeAlarmNotFound   = jrpc2.Code(-32001)
	codeNoActiveSession = jrpc2.Code(-32002)
	codeInvalidSchedule = jrpc2.Code(-32003)
	codeInvalidParams   = jrpc2.Code(-32602)
)

// MethodFired is the push notification sent to every connected client when an
// alarm opens a ringing session.
const MethodFired = "alarm.fired"

// AlarmParams carries the caller-editable alarm fields for add and update.
type AlarmParams struct {
	Hour          int    `json:"hour"`
	Minute        int    `json:"minute"`
	Label         string `json:"label,omitempty"`
	Enabled       bool   `json:"enabled"`
	Repeat        string `json:"repeat,omitempty"`
	Weekdays      []int  `json:"weekdays,omitempty"`
	Sound         string `json:"sound,omitempty"`
	CustomSound   []byte `json:"custom_sound,omitempty"`
	SnoozeMinutes int    `json:"snooze_minutes,omitempty"`
	Vibration     bool   `json:"vibration,omitempty"`
	GradualVolume bool   `json:"gradual_volume,omitempty"`
}

// UpdateParams is the input for alarm.update.
type UpdateParams struct {
	ID string `json:"id"`
	AlarmParams
}

// IDParam is a common input naming a single alarm.
type IDParam struct {
	ID string `json:"id"`
}

// ToggleParams is the input for alarm.toggle.
type ToggleParams struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// ListResult is the response for alarm.list.
type ListResult struct {
	Alarms []*domain.Alarm `json:"alarms"`
}

// StatusResult is the response for session.status.
type StatusResult struct {
	Ringing   bool       `json:"ringing"`
	AlarmID   string     `json:"alarm_id,omitempty"`
	Label     string     `json:"label,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// PokeResult is the response for scheduler.poke.
type PokeResult struct {
	Fired int `json:"fired"`
}

// VersionResult is the response for system.version.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// FiredNotification is the payload of the alarm.fired push.
type FiredNotification struct {
	AlarmID string `json:"alarm_id"`
	Label   string `json:"label"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
}

// Server exposes the scheduler over JSON-RPC. Every accepted connection gets
// its own jrpc2 server over a line-delimited channel; connected servers form
// the broadcast set for push notifications.
type Server struct {
	scheduler *scheduler.Service
	methods   handler.Map

	mu      sync.RWMutex
	clients map[*jrpc2.Server]struct{}
}

// NewServer builds the method table around the scheduler.
func NewServer(s *scheduler.Service) *Server {
	srv := &Server{
		scheduler: s,
		clients:   make(map[*jrpc2.Server]struct{}),
	}

	srv.methods = handler.Map{
		"alarm.add":       handler.New(srv.alarmAdd),
		"alarm.update":    handler.New(srv.alarmUpdate),
		"alarm.remove":    handler.New(srv.alarmRemove),
		"alarm.toggle":    handler.New(srv.alarmToggle),
		"alarm.get":       handler.New(srv.alarmGet),
		"alarm.list":      handler.New(srv.alarmList),
		"session.snooze":  handler.New(srv.sessionSnooze),
		"session.dismiss": handler.New(srv.sessionDismiss),
		"session.status":  handler.New(srv.sessionStatus),
		"scheduler.poke":  handler.New(srv.schedulerPoke),
		"system.version":  handler.New(srv.systemVersion),
	}

	return srv
}

// Serve accepts connections until the context is cancelled or the listener
// fails. Each connection is served concurrently.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		go s.serveConn(ctx, conn)
	}
}

// serveConn runs one jrpc2 server for the lifetime of the connection and
// keeps it in the broadcast set while it lives.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(channel.Line(conn, conn))

	s.mu.Lock()
	s.clients[srv] = struct{}{}
	s.mu.Unlock()

	logger.Debug(ctx, "Control client connected")

	_ = srv.Wait()

	s.mu.Lock()
	delete(s.clients, srv)
	s.mu.Unlock()

	logger.Debug(ctx, "Control client disconnected")
}

// BroadcastFired pushes the fired alarm to every connected client. Clients
// that fail to receive are dropped from the broadcast set.
func (s *Server) BroadcastFired(ctx context.Context, a *domain.Alarm) {
	payload := &FiredNotification{
		AlarmID: a.ID,
		Label:   a.Label,
		Hour:    a.Hour,
		Minute:  a.Minute,
	}

	s.mu.RLock()
	clients := make([]*jrpc2.Server, 0, len(s.clients))
	for srv := range s.clients {
		clients = append(clients, srv)
	}
	s.mu.RUnlock()

	var failed []*jrpc2.Server

	for _, srv := range clients {
		if err := srv.Notify(ctx, MethodFired, payload); err != nil {
			logger.WarnKV(ctx, "Push to control client failed", "error", err)
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		s.mu.Lock()
		for _, srv := range failed {
			delete(s.clients, srv)
		}
		s.mu.Unlock()
	}
}

// ClientCount returns the size of the broadcast set.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.clients)
}

func (s *Server) alarmAdd(ctx context.Context, p *AlarmParams) (*domain.Alarm, error) {
	spec, err := toSpec(p)
	if err != nil {
		return nil, err
	}

	a, err := s.scheduler.Add(ctx, spec)
	if err != nil {
		return nil, schedulerError(err)
	}

	return a, nil
}

func (s *Server) alarmUpdate(ctx context.Context, p *UpdateParams) (*domain.Alarm, error) {
	if p.ID == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: id"}
	}

	spec, err := toSpec(&p.AlarmParams)
	if err != nil {
		return nil, err
	}

	a, err := s.scheduler.Update(ctx, p.ID, spec)
	if err != nil {
		return nil, schedulerError(err)
	}

	return a, nil
}

func (s *Server) alarmRemove(ctx context.Context, p *IDParam) (*EmptyResult, error) {
	if err := s.scheduler.Remove(ctx, p.ID); err != nil {
		return nil, schedulerError(err)
	}

	return &EmptyResult{}, nil
}

func (s *Server) alarmToggle(ctx context.Context, p *ToggleParams) (*domain.Alarm, error) {
	a, err := s.scheduler.Toggle(ctx, p.ID, p.Enabled)
	if err != nil {
		return nil, schedulerError(err)
	}

	return a, nil
}

func (s *Server) alarmGet(ctx context.Context, p *IDParam) (*domain.Alarm, error) {
	a, err := s.scheduler.Get(ctx, p.ID)
	if err != nil {
		return nil, schedulerError(err)
	}

	return a, nil
}

func (s *Server) alarmList(ctx context.Context) (*ListResult, error) {
	return &ListResult{Alarms: s.scheduler.List(ctx)}, nil
}

func (s *Server) sessionSnooze(ctx context.Context) (*domain.Alarm, error) {
	a, err := s.scheduler.Snooze(ctx)
	if err != nil {
		return nil, schedulerError(err)
	}

	return a, nil
}

func (s *Server) sessionDismiss(ctx context.Context) (*domain.Alarm, error) {
	a, err := s.scheduler.Dismiss(ctx)
	if err != nil {
		return nil, schedulerError(err)
	}

	return a, nil
}

func (s *Server) sessionStatus(context.Context) (*StatusResult, error) {
	ringing := s.scheduler.Ringing()
	if ringing == nil {
		return &StatusResult{}, nil
	}

	return &StatusResult{
		Ringing:   true,
		AlarmID:   ringing.AlarmID,
		Label:     ringing.Label,
		StartedAt: &ringing.StartedAt,
	}, nil
}

func (s *Server) schedulerPoke(ctx context.Context) (*PokeResult, error) {
	return &PokeResult{Fired: s.scheduler.Poke(ctx)}, nil
}

func (s *Server) systemVersion(context.Context) (*VersionResult, error) {
	return &VersionResult{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildTime: version.BuildTime,
	}, nil
}

// toSpec converts wire params to a domain spec, validating the weekday range.
func toSpec(p *AlarmParams) (domain.Spec, error) {
	var days []time.Weekday

	for _, d := range p.Weekdays {
		if d < 0 || d > 6 {
			return domain.Spec{}, &jrpc2.Error{Code: codeInvalidParams, Message: "weekday out of range"}
		}

		days = append(days, time.Weekday(d))
	}

	return domain.Spec{
		Hour:          p.Hour,
		Minute:        p.Minute,
		Label:         p.Label,
		Enabled:       p.Enabled,
		Repeat:        domain.RepeatMode(p.Repeat),
		Weekdays:      domain.NewWeekdaySet(days...),
		Sound:         domain.SoundKind(p.Sound),
		CustomSound:   p.CustomSound,
		SnoozeMinutes: p.SnoozeMinutes,
		Vibration:     p.Vibration,
		GradualVolume: p.GradualVolume,
	}, nil
}

// schedulerError maps service errors to JSON-RPC error codes.
func schedulerError(err error) error {
	switch {
	case errors.Is(err, scheduler.ErrAlarmNotFound):
		return &jrpc2.Error{Code: codeAlarmNotFound, Message: err.Error()}
	case errors.Is(err, scheduler.ErrNoActiveSession):
		return &jrpc2.Error{Code: codeNoActiveSession, Message: err.Error()}
	default:
		return &jrpc2.Error{Code: codeInvalidSchedule, Message: err.Error()}
	}
}
