package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOEvent is the socket.io event name build events are emitted under.
const SocketIOEvent = "build_event"

// ErrNotConnected is returned when emitting on a disconnected socket.
var ErrNotConnected = errors.New("socket.io client is not connected")

// SocketIOSink forwards build events to a socket.io server.
type SocketIOSink struct {
	io        *socket.Socket
	connected atomic.Bool
}

// NewSocketIOSink connects to rawURL and waits up to timeout for the
// handshake. The URL path, when set, is the socket.io endpoint path.
func NewSocketIOSink(ctx context.Context, rawURL string, timeout time.Duration) (*SocketIOSink, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported events URL scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("events URL %q has no host", rawURL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket("/", opts)
	sink := &SocketIOSink{io: io}

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		sink.connected.Store(true)
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(...any) {
		sink.connected.Store(false)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return sink, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

func (s *SocketIOSink) Emit(ctx context.Context, ev Event) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}
	s.io.Emit(SocketIOEvent, map[string]any{
		"run_id": ev.RunID,
		"type":   string(ev.Type),
		"target": ev.Target,
		"digest": ev.Digest,
		"error":  ev.Error,
		"time":   ev.Time.Format(time.RFC3339Nano),
	})
	return nil
}

func (s *SocketIOSink) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Disconnecting socket client", "sid", s.io.Id())
	s.connected.Store(false)
	s.io.Disconnect()
	return nil
}
