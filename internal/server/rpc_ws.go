package server

import (
	"context"
	"net/http"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
)

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
// Each WebSocket connection gets one wsChannel that bridges read/write
// operations between the WebSocket transport and the jrpc2 server.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// handleWS serves one JSON-RPC session per WebSocket connection. The
// session is registered for reminder pushes until the peer goes away.
func (rs *RPCServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		rs.log.Warning("WebSocket upgrade failed: %v", err)
		return
	}
	srv := jrpc2.NewServer(rs.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(&wsChannel{conn: conn, ctx: r.Context()})

	rs.notifier.Register(srv)
	defer rs.notifier.Unregister(srv)
	rs.log.Debug("RPC session opened from %s", r.RemoteAddr)
	_ = srv.Wait()
	rs.log.Debug("RPC session closed from %s", r.RemoteAddr)
}
