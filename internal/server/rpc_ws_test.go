package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	cws "github.com/coder/websocket"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/pkg/todolib"
)

func dialRPC(t *testing.T, ctx context.Context, env *testEnv) *cws.Conn {
	t.Helper()
	conn, _, err := cws.Dial(ctx, env.wsURL(common.RPCWSPath), &cws.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{BearerHeader(testSecret)},
		},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close(cws.StatusNormalClosure, "") })
	return conn
}

func wsCall(t *testing.T, ctx context.Context, conn *cws.Conn, id int, method string, params any) map[string]any {
	t.Helper()
	req := map[string]any{"jsonrpc": "2.0", "method": method, "id": id}
	if params != nil {
		req["params"] = params
	}
	data, _ := json.Marshal(req)
	if err := conn.Write(ctx, cws.MessageText, data); err != nil {
		t.Fatalf("WebSocket write failed: %v", err)
	}
	_, respData, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("WebSocket read failed: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(respData, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

func TestWebSocketEndpoint_AuthRequired(t *testing.T) {
	env := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, header := range []http.Header{nil, {"Authorization": []string{"Bearer wrong-token"}}} {
		_, resp, err := cws.Dial(ctx, env.wsURL(common.RPCWSPath), &cws.DialOptions{HTTPHeader: header})
		if err == nil {
			t.Fatal("expected error for unauthorized WebSocket connection")
		}
		if resp != nil && resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	}
}

func TestWebSocketEndpoint_Calls(t *testing.T) {
	env := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialRPC(t, ctx, env)

	resp := wsCall(t, ctx, conn, 1, common.MethodVersion, nil)
	if rpcResult(t, resp)["version"] != "1.0.0" {
		t.Fatalf("unexpected version response: %v", resp)
	}

	resp = wsCall(t, ctx, conn, 2, common.MethodTaskAdd, map[string]any{"text": "from ws"})
	if rpcResult(t, resp)["text"] != "from ws" {
		t.Fatalf("unexpected add response: %v", resp)
	}
	if env.Studio.List.Len() != 4 {
		t.Fatalf("expected 4 tasks, got %d", env.Studio.List.Len())
	}

	resp = wsCall(t, ctx, conn, 3, "nonexistent.method", nil)
	if code := rpcErrorCode(t, resp); code != -32601 {
		t.Fatalf("expected -32601, got %d", code)
	}
}

func TestWebSocketEndpoint_PushesDeliveries(t *testing.T) {
	env := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialRPC(t, ctx, env)

	waitFor(t, "registered session", func() bool { return env.Server.Sessions() == 1 })
	task := todolib.Task{ID: "t1", Text: "stand up"}
	go env.Server.Deliver(notify.Delivery{Task: task, Method: notify.MethodAlert, Message: notify.AlertMessage(task)})

	for _, want := range []string{common.PushReminderFired, common.PushReminderAlert} {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read push: %v", err)
		}
		var msg pushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal push: %v", err)
		}
		if msg.Method != want || msg.Params.ID != "t1" || msg.Params.Method != "alert" {
			t.Fatalf("unexpected push %s", data)
		}
	}
}

func TestWebSocketEndpoint_UnregistersOnClose(t *testing.T) {
	env := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialRPC(t, ctx, env)

	waitFor(t, "registered session", func() bool { return env.Server.Sessions() == 1 })
	conn.Close(cws.StatusNormalClosure, "")
	waitFor(t, "closed session", func() bool { return env.Server.Sessions() == 0 })
}
