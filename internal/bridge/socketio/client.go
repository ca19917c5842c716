// Package socketio connects a bridge to a remote code runtime over socket.io.
// Tasks are emitted as execute events and results arrive as result events,
// which are routed back through Bridge.DeliverRaw.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/specialistvlad/macrograph/internal/bridge"
	"github.com/specialistvlad/macrograph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	DefaultExecuteEvent   = "execute"
	DefaultResultEvent    = "result"
	DefaultConnectTimeout = 15 * time.Second
)

// Options configures the runtime connection.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ExecuteEvent       string
	ResultEvent        string
	ConnectTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.ExecuteEvent == "" {
		o.ExecuteEvent = DefaultExecuteEvent
	}
	if o.ResultEvent == "" {
		o.ResultEvent = DefaultResultEvent
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	return o
}

// Client is a bridge.Environment backed by a socket.io connection.
type Client struct {
	io     *socket.Socket
	opts   Options
	logger *slog.Logger
}

var _ bridge.Environment = (*Client)(nil)

// Dial connects to the runtime and routes its result events into b. It
// blocks until the connection is up, ctx is done or the connect timeout
// elapses.
func Dial(ctx context.Context, b *bridge.Bridge, opts Options) (*Client, error) {
	opts = opts.withDefaults()
	for _, ev := range []string{opts.ExecuteEvent, opts.ResultEvent} {
		if socket.RESERVED_EVENTS.Has(ev) {
			return nil, fmt.Errorf("socketio: %q is a reserved event name", ev)
		}
	}
	logger := ctxlog.FromContext(ctx).With("component", "socketio", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("socketio: parse url: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socketio: url %q needs a scheme and host", opts.URL)
	}

	sioOpts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sioOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		sioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sioOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sioOpts)
	io := manager.Socket(opts.Namespace, sioOpts)

	c := &Client{io: io, opts: opts, logger: logger}
	io.On(types.EventName(opts.ResultEvent), func(args ...any) {
		c.handleResult(b, args)
	})
	io.On(types.EventName("disconnect"), func(args ...any) {
		logger.Warn("Runtime disconnected.", "reason", fmt.Sprint(args...))
	})

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to runtime.", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connected <- connectError(errs)
	})

	logger.Debug("Connecting to runtime.")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socketio: connect: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("socketio: connect: %w", ctx.Err())
	case <-time.After(opts.ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("socketio: timed out after %s waiting for connection", opts.ConnectTimeout)
	}
}

func connectError(errs []any) error {
	if len(errs) > 0 {
		if err, ok := errs[0].(error); ok {
			return err
		}
		return fmt.Errorf("%v", errs[0])
	}
	return errors.New("connect_error")
}

// Available implements bridge.Environment.
func (c *Client) Available() bool {
	return c.io.Connected()
}

// Send implements bridge.Environment. It emits and returns without waiting
// for the task's result.
func (c *Client) Send(_ context.Context, env bridge.Envelope) error {
	payload, err := envelopePayload(env)
	if err != nil {
		return err
	}
	c.logger.Debug("Emitting task.", "event", c.opts.ExecuteEvent, "task_id", env.TaskID.String())
	if err := c.io.Emit(c.opts.ExecuteEvent, payload); err != nil {
		return fmt.Errorf("socketio: emit %s: %w", c.opts.ExecuteEvent, err)
	}
	return nil
}

// Close disconnects from the runtime.
func (c *Client) Close() error {
	c.logger.Info("Disconnecting from runtime.", "sid", c.io.Id())
	c.io.Disconnect()
	return nil
}

func (c *Client) handleResult(b *bridge.Bridge, args []any) {
	if len(args) == 0 {
		c.logger.Warn("Result event without payload.")
		return
	}
	d, err := decodePayload(args[0])
	if err != nil {
		c.logger.Warn("Dropping undecodable result.", "error", err)
		return
	}
	if _, err := b.DeliverRaw(d.TaskID, d.Outcome); err != nil {
		c.logger.Warn("Dropping result with bad task id.", "error", err)
	}
}

// envelopePayload converts env to the generic map the socket.io encoder
// serializes.
func envelopePayload(env bridge.Envelope) (map[string]any, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("socketio: encode envelope: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("socketio: encode envelope: %w", err)
	}
	// Task ids travel as decimal strings so large counters survive JS numbers.
	payload["taskId"] = env.TaskID.String()
	return payload, nil
}

// decodePayload accepts the shapes a runtime may send a result in: a decoded
// object, a JSON string or raw JSON bytes.
func decodePayload(v any) (bridge.Delivery, error) {
	switch p := v.(type) {
	case string:
		return bridge.DecodeDelivery([]byte(p))
	case []byte:
		return bridge.DecodeDelivery(p)
	case map[string]any:
		raw, err := json.Marshal(p)
		if err != nil {
			return bridge.Delivery{}, fmt.Errorf("socketio: re-encode result: %w", err)
		}
		return bridge.DecodeDelivery(raw)
	default:
		return bridge.Delivery{}, fmt.Errorf("socketio: unsupported result payload %T", v)
	}
}
