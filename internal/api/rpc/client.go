package rpc

import (
	"context"
	"fmt"
	"net"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Client is the control-plane client used by the CLI. It speaks JSON-RPC over
// the daemon's unix socket and can surface fired-alarm pushes through a
// caller-supplied handler.
type Client struct {
	conn net.Conn
	cli  *jrpc2.Client
}

// Dial connects to the daemon socket. When onFired is non-nil it receives
// every alarm.fired push for the lifetime of the connection.
func Dial(socketPath string, onFired func(n *FiredNotification)) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial daemon socket: %w", err)
	}

	opts := &jrpc2.ClientOptions{}
	if onFired != nil {
		opts.OnNotify = func(req *jrpc2.Request) {
			if req.Method() != MethodFired {
				return
			}

			var n FiredNotification
			if err := req.UnmarshalParams(&n); err != nil {
				return
			}

			onFired(&n)
		}
	}

	return &Client{
		conn: conn,
		cli:  jrpc2.NewClient(channel.Line(conn, conn), opts),
	}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.cli.Close()
}

// Add creates an alarm.
func (c *Client) Add(ctx context.Context, p *AlarmParams) (*domain.Alarm, error) {
	var a domain.Alarm
	if err := c.cli.CallResult(ctx, "alarm.add", p, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Update replaces the alarm's editable fields.
func (c *Client) Update(ctx context.Context, p *UpdateParams) (*domain.Alarm, error) {
	var a domain.Alarm
	if err := c.cli.CallResult(ctx, "alarm.update", p, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Remove deletes an alarm.
func (c *Client) Remove(ctx context.Context, id string) error {
	var res EmptyResult

	return c.cli.CallResult(ctx, "alarm.remove", &IDParam{ID: id}, &res)
}

// Toggle enables or disables an alarm.
func (c *Client) Toggle(ctx context.Context, id string, enabled bool) (*domain.Alarm, error) {
	var a domain.Alarm
	if err := c.cli.CallResult(ctx, "alarm.toggle", &ToggleParams{ID: id, Enabled: enabled}, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Get fetches a single alarm.
func (c *Client) Get(ctx context.Context, id string) (*domain.Alarm, error) {
	var a domain.Alarm
	if err := c.cli.CallResult(ctx, "alarm.get", &IDParam{ID: id}, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]*domain.Alarm, error) {
	var res ListResult
	if err := c.cli.CallResult(ctx, "alarm.list", nil, &res); err != nil {
		return nil, err
	}

	return res.Alarms, nil
}

// Snooze postpones the ringing alarm.
func (c *Client) Snooze(ctx context.Context) (*domain.Alarm, error) {
	var a domain.Alarm
	if err := c.cli.CallResult(ctx, "session.snooze", nil, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Dismiss silences the ringing alarm.
func (c *Client) Dismiss(ctx context.Context) (*domain.Alarm, error) {
	var a domain.Alarm
	if err := c.cli.CallResult(ctx, "session.dismiss", nil, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

// Status reports whether an alarm is ringing.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var res StatusResult
	if err := c.cli.CallResult(ctx, "session.status", nil, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// Poke requests an immediate evaluation.
func (c *Client) Poke(ctx context.Context) (*PokeResult, error) {
	var res PokeResult
	if err := c.cli.CallResult(ctx, "scheduler.poke", nil, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// Version reports the daemon's build information.
func (c *Client) Version(ctx context.Context) (*VersionResult, error) {
	var res VersionResult
	if err := c.cli.CallResult(ctx, "system.version", nil, &res); err != nil {
		return nil, err
	}

	return &res, nil
}
