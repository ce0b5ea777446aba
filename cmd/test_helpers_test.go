package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/config"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/internal/scheduler"
	"github.com/todostudio/todostudio/internal/server"
	"github.com/todostudio/todostudio/internal/studio"
	"github.com/todostudio/todostudio/pkg/credman/keyring"
	"github.com/todostudio/todostudio/pkg/todocli"
	"github.com/todostudio/todostudio/pkg/todolib"
)

const testToken = "cmd-test-token"

var testNow = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

// captureOutput captures stdout and stderr during function execution.
// It redirects os.Stdout and os.Stderr to pipes, runs the provided function,
// and returns the captured output as strings.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	// Drain concurrently so large output cannot fill the pipe buffer.
	var bufOut, bufErr bytes.Buffer
	outDone := make(chan struct{})
	errDone := make(chan struct{})
	go func() { io.Copy(&bufOut, rOut); close(outDone) }()
	go func() { io.Copy(&bufErr, rErr); close(errDone) }()

	f()

	wOut.Close()
	wErr.Close()
	<-outDone
	<-errDone
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	rOut.Close()
	rErr.Close()

	return bufOut.String(), bufErr.String()
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertNotContains checks if output does NOT contain the specified substring.
func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertErrorFormat checks that error output follows the standard format:
// todostudio: cmd[action]: msg
func assertErrorFormat(t *testing.T, output, cmd, action string) {
	t.Helper()
	pattern := "todostudio: " + cmd + "[" + action + "]:"
	if !strings.Contains(output, pattern) {
		t.Errorf("expected error format %q, got:\n%s", pattern, output)
	}
}

// memTokenStore keeps the token in memory.
type memTokenStore struct {
	token string
}

func (m *memTokenStore) GetToken() (string, error) {
	if m.token == "" {
		return "", keyring.ErrNotFound
	}
	return m.token, nil
}

func (m *memTokenStore) SetToken() (string, error) {
	m.token = "generated-token"
	return m.token, nil
}

func (m *memTokenStore) DeleteToken() error {
	m.token = ""
	return nil
}

// isolate points the command package at an in-memory filesystem and token
// store and clears environment overrides.
func isolate(t *testing.T) *memTokenStore {
	t.Helper()
	for _, env := range []string{
		common.ConfigPathEnv, common.ListenEnv, common.SecretEnv,
		common.NotifyBackendEnv, common.DebugEnv,
	} {
		t.Setenv(env, "")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv(todocli.VersionCheckEnv, "1")

	store := &memTokenStore{}
	oldFs, oldStores := appFs, tokenStores
	appFs = afero.NewMemMapFs()
	tokenStores = func(*config.Config) []keyring.TokenStore {
		return []keyring.TokenStore{store}
	}
	t.Cleanup(func() {
		appFs, tokenStores = oldFs, oldStores
	})
	return store
}

type testDaemon struct {
	addr   string
	studio *studio.Studio
	clock  *scheduler.FakeClock
}

// startDaemon serves a studio seeded with the example tasks.
func startDaemon(t *testing.T) *testDaemon {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	clock := scheduler.NewFakeClock(testNow)
	n := notify.NewNotifier(notify.NopSink{}, notify.NewWriterAlerter(io.Discard), nil)
	st := studio.New(ctx, todolib.NewList(todolib.ExampleTasks()...), n, &studio.Options{Clock: clock})
	srv := server.NewServer(&server.RPCConfig{
		Secret:   testToken,
		Version:  "1.2.3",
		Location: time.UTC,
		Now:      clock.Now,
	}, st, nil)
	n.Observe(srv.Deliver)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = st.Run(ctx)
	}()
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		_ = srv.Close()
		cancel()
		<-done
	})
	return &testDaemon{
		addr:   strings.TrimPrefix(hs.URL, "http://"),
		studio: st,
		clock:  clock,
	}
}

// run executes the CLI against d and returns what it printed.
func (d *testDaemon) run(t *testing.T, args ...string) string {
	t.Helper()
	full := append([]string{"todostudio", "--listen", d.addr, "--token", testToken}, args...)
	var err error
	out, _ := captureOutput(func() {
		err = Execute(full, BuildArgs{Version: "1.2.3", BuildType: "test"})
	})
	if err != nil {
		t.Fatalf("Execute(%v): %v", args, err)
	}
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
