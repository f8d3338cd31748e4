package sockethost

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/nodefacade/internal/ctxlog"
)

// Options configures a bridge connection.
type Options struct {
	// URL of the socket.io endpoint, e.g. "ws://localhost:9009/nodefacade".
	URL string

	// Namespace to join. Defaults to "/".
	Namespace string

	// RequestTimeout bounds every request that has no tighter context
	// deadline. Defaults to 10s.
	RequestTimeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Session is a host.Session backed by a live application on the far side of
// a socket.io connection. Handle methods block on the wire; everything else
// about the host contract is unchanged.
type Session struct {
	io      *socket.Socket
	manager *socket.Manager
	timeout time.Duration

	seq     atomic.Int64
	mu      sync.Mutex
	pending map[string]chan *response
}

// Connect dials the bridge and waits for the initial connection (or ctx).
func Connect(ctx context.Context, opts Options) (*Session, error) {
	logger := ctxlog.FromContext(ctx).With("url", opts.URL, "namespace", opts.Namespace)
	logger.Debug("Connecting to host bridge.")

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	s := &Session{
		manager: socket.NewManager(baseURL, sockOpts),
		timeout: opts.RequestTimeout,
		pending: make(map[string]chan *response),
	}
	s.io = s.manager.Socket(opts.Namespace, sockOpts)

	connected := make(chan struct{}, 1)
	connectErr := make(chan error, 1)

	s.io.On(types.EventName("connect"), func(...any) {
		logger.Info("Connected to host bridge.", "sid", s.io.Id())
		select {
		case connected <- struct{}{}:
		default:
		}
	})
	s.io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				select {
				case connectErr <- err:
				default:
				}
			}
		}
	})
	s.io.On(types.EventName(responseEvent), s.dispatch)

	s.io.Connect()

	select {
	case <-connected:
		return s, nil
	case err := <-connectErr:
		s.io.Disconnect()
		return nil, fmt.Errorf("bridge connection failed: %w", err)
	case <-ctx.Done():
		s.io.Disconnect()
		return nil, ctx.Err()
	case <-time.After(opts.RequestTimeout):
		s.io.Disconnect()
		return nil, fmt.Errorf("timed out connecting to host bridge at %s", opts.URL)
	}
}

// Close disconnects from the bridge. Outstanding requests fail.
func (s *Session) Close() {
	s.io.Disconnect()
}

// dispatch routes a response event to the request waiting on it.
func (s *Session) dispatch(data ...any) {
	if len(data) == 0 {
		return
	}
	resp, err := parseResponse(data[0])
	if err != nil || resp.ID == "" {
		return
	}

	s.mu.Lock()
	ch, ok := s.pending[resp.ID]
	if ok {
		delete(s.pending, resp.ID)
	}
	s.mu.Unlock()

	if ok {
		ch <- resp
	}
}

// call sends one request and blocks for its response, bounded by ctx and
// the session timeout.
func (s *Session) call(ctx context.Context, req *request) (*response, error) {
	req.ID = strconv.FormatInt(s.seq.Add(1), 10)

	ch := make(chan *response, 1)
	s.mu.Lock()
	s.pending[req.ID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, req.ID)
		s.mu.Unlock()
	}()

	payload, err := toPayload(req)
	if err != nil {
		return nil, err
	}
	s.io.Emit(requestEvent, payload)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error.asHostError()
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("request %q timed out after %s", req.Op, s.timeout)
	}
}

// bg is the context used for host contract methods that carry none.
func (s *Session) bg() context.Context {
	return context.Background()
}

// toPayload converts a request into the generic map the socket layer
// serializes cleanly.
func toPayload(req *request) (map[string]any, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("cannot encode request: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("cannot encode request: %w", err)
	}
	return m, nil
}

// parseResponse decodes whatever shape the socket layer delivered into a
// response envelope.
func parseResponse(data any) (*response, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode response: %w", err)
	}
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("cannot decode response: %w", err)
	}
	return &resp, nil
}
