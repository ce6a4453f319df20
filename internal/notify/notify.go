// Package notify publishes batch progress to a socket.io server.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/nifconv/internal/ctxlog"
)

// Event names emitted to the server.
const (
	EventProgress = "progress"
	EventDocument = "document"
)

// DefaultTimeout bounds the initial connection attempt.
const DefaultTimeout = 15 * time.Second

// Options configures Dial.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Progress is the payload of EventProgress.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Document is the payload of EventDocument.
type Document struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
}

// Client emits progress events over one socket.io connection. Emit
// failures are logged and otherwise ignored.
type Client struct {
	io     *socket.Socket
	logger *slog.Logger
}

// Dial connects to the server at rawURL. The URL path is used as the
// socket.io path; the namespace comes from opts.
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", rawURL)
	logger.Debug("Connecting notifier...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q needs a scheme and a host", rawURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}

	sopts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		sopts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))
	sopts.SetReconnection(false)

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Notifier connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		connectChan <- err
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Client{io: io, logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(opts.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", opts.Timeout)
	}
}

func (c *Client) emit(event string, payload any) {
	if err := c.io.Emit(event, payload); err != nil {
		c.logger.Warn("Failed to emit notifier event.", "event", event, "error", err)
	}
}

// Progress emits the batch advancement.
func (c *Client) Progress(done, total int) {
	c.emit(EventProgress, Progress{Done: done, Total: total})
}

// Document emits the outcome of one document.
func (c *Client) Document(path string, success bool) {
	c.emit(EventDocument, Document{Path: path, Success: success})
}

// Close disconnects from the server.
func (c *Client) Close() error {
	c.logger.Debug("Disconnecting notifier", "sid", c.io.Id())
	c.io.Disconnect()
	return nil
}
