package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/internal/scheduler"
	"github.com/todostudio/todostudio/internal/studio"
	"github.com/todostudio/todostudio/pkg/todolib"
)

const testSecret = "server-test-secret"

var testNow = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	URL    string
	Server *Server
	Studio *studio.Studio
	Clock  *scheduler.FakeClock
}

// startTestServer runs a studio over the example tasks behind an httptest
// server. Everything is torn down with the test.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()
	clock := scheduler.NewFakeClock(testNow)
	ctx, cancel := context.WithCancel(context.Background())
	list := todolib.NewList(todolib.ExampleTasks()...)
	st := studio.New(ctx, list, notify.NewNotifier(notify.NopSink{}, nil, nil), &studio.Options{Clock: clock})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = st.Run(ctx)
	}()

	srv := NewServer(&RPCConfig{
		Secret:    testSecret,
		Version:   "1.0.0",
		Commit:    "abc123",
		BuildType: "test",
		Location:  time.UTC,
		Now:       clock.Now,
	}, st, nil)
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		httpSrv.Close()
		_ = srv.Close()
		cancel()
		<-done
	})
	return &testEnv{URL: httpSrv.URL, Server: srv, Studio: st, Clock: clock}
}

func (e *testEnv) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(e.URL, "http") + path
}

// rpcPost sends a JSON-RPC request via HTTP POST with auth and returns the
// decoded response.
func rpcPost(t *testing.T, serverURL, method string, params any) (int, map[string]any) {
	t.Helper()
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		reqBody["params"] = params
	}
	data, _ := json.Marshal(reqBody)
	req, err := http.NewRequest(http.MethodPost, serverURL+"/jsonrpc", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testSecret)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

// rpcResult returns the result object or fails the test.
func rpcResult(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v (error: %v)", resp["result"], resp["error"])
	}
	return result
}

// rpcErrorCode returns the error code or fails the test.
func rpcErrorCode(t *testing.T, resp map[string]any) int {
	t.Helper()
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", resp)
	}
	return int(errObj["code"].(float64))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
