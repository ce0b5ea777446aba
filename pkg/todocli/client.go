// Package todocli is the Go client for the todostudio daemon. It speaks
// JSON-RPC 2.0 over the daemon's WebSocket endpoint and surfaces reminder
// pushes through a callback.
package todocli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/todostudio/todostudio/common"
)

// ErrUnauthorized is returned by Dial when the daemon rejects the token.
var ErrUnauthorized = errors.New("daemon rejected the RPC token")

// Options configures a Client.
type Options struct {
	// Token is sent as a bearer token on the WebSocket handshake.
	Token string
	// OnReminder receives reminder pushes. method is common.PushReminderFired
	// or common.PushReminderAlert.
	OnReminder func(method string, ev common.ReminderEvent)
}

type Client struct {
	rpc  *jrpc2.Client
	ch   *wsChannel
	stop context.CancelFunc
}

// URL returns the RPC WebSocket URL for a daemon listening on addr. addr
// may already be a ws:// or wss:// URL.
func URL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + addr + common.RPCWSPath
}

// Dial connects to the daemon listening on addr.
func Dial(ctx context.Context, addr string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	conn, resp, err := cws.Dial(ctx, URL(addr), &cws.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + opts.Token},
		},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	// The connection outlives the dial context.
	connCtx, stop := context.WithCancel(context.Background())
	ch := &wsChannel{conn: conn, ctx: connCtx, done: make(chan struct{})}

	var copts *jrpc2.ClientOptions
	if opts.OnReminder != nil {
		onReminder := opts.OnReminder
		copts = &jrpc2.ClientOptions{
			OnNotify: func(req *jrpc2.Request) {
				var ev common.ReminderEvent
				if err := req.UnmarshalParams(&ev); err != nil {
					return
				}
				onReminder(req.Method(), ev)
			},
		}
	}
	return &Client{
		rpc:  jrpc2.NewClient(ch, copts),
		ch:   ch,
		stop: stop,
	}, nil
}

// Done is closed when the connection to the daemon is lost or closed.
func (c *Client) Done() <-chan struct{} {
	return c.ch.done
}

// Close disconnects from the daemon.
func (c *Client) Close() error {
	err := c.rpc.Close()
	c.stop()
	return err
}

func call[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var out T
	if err := c.rpc.CallResult(ctx, method, params, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &out, nil
}

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context

	once sync.Once
	done chan struct{}
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	if err != nil {
		c.once.Do(func() { close(c.done) })
	}
	return data, err
}

func (c *wsChannel) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.conn.Close(cws.StatusNormalClosure, "")
}
