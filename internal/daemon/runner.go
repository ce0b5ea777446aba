// Package daemon runs the reminder daemon's HTTP endpoint and manages its
// lifecycle: start, graceful shutdown and forced stop on timeout.
package daemon

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// DefaultShutdownTimeout bounds graceful shutdown when Config is nil.
const DefaultShutdownTimeout = 5 * time.Second

// Config holds the configuration for the daemon runner.
type Config struct {
	// Addr is the TCP address to listen on, e.g. "127.0.0.1:7725".
	// An empty host or port 0 picks any.
	Addr string

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// A zero value means no timeout.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
type Dependencies struct {
	// ListenerFactory creates network listeners.
	// If nil, net.Listen is used.
	ListenerFactory func(network, address string) (net.Listener, error)

	// Handler serves requests on the listener.
	// If nil, every request gets 404.
	Handler http.Handler

	// ShutdownFunc is called during shutdown to clean up resources.
	// If nil, no cleanup function is called.
	ShutdownFunc func() error

	// ErrorLog receives HTTP server errors. If nil, the log package's
	// standard logger is used.
	ErrorLog *log.Logger
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config   *Config
	deps     *Dependencies
	running  bool
	mu       sync.Mutex
	cancel   context.CancelFunc
	listener net.Listener
	srv      *http.Server
}

// New creates a new daemon runner with the given configuration and dependencies.
// If config is nil, default values are used.
// If deps is nil, default dependencies (using net.Listen) are used.
func New(config *Config, deps *Dependencies) *Runner {
	return &Runner{
		config: applyConfigDefaults(config),
		deps:   applyDependencyDefaults(deps),
	}
}

func applyConfigDefaults(config *Config) *Config {
	if config == nil {
		return &Config{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: DefaultShutdownTimeout,
		}
	}
	return config
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.ListenerFactory == nil {
		deps.ListenerFactory = net.Listen
	}
	if deps.Handler == nil {
		deps.Handler = http.NotFoundHandler()
	}
	return deps
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Addr returns the address the runner is listening on, or nil when stopped.
func (r *Runner) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Start listens on the configured address and serves until the context is
// canceled or the server fails.
// Returns ErrAlreadyRunning if the daemon is already started.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	ctx, r.cancel = context.WithCancel(ctx)

	// Create listener BEFORE setting running=true to avoid race condition
	listener, err := r.deps.ListenerFactory("tcp", r.config.Addr)
	if err != nil {
		r.cancel()
		r.mu.Unlock()
		return err
	}
	r.listener = listener
	srv := &http.Server{
		Handler:           r.deps.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          r.deps.ErrorLog,
	}
	r.srv = srv
	r.running = true
	r.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		r.cleanupOnStop()
		return ctx.Err()
	case err := <-serveErr:
		r.cleanupOnStop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// cleanupOnStop drains the HTTP server and marks the runner stopped.
func (r *Runner) cleanupOnStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.closeServer()
}

// closeServer shuts the HTTP server down, waiting at most ShutdownTimeout
// for in-flight requests. Caller must hold the mutex.
// Shutdown errors are ignored as this is cleanup code.
func (r *Runner) closeServer() {
	if r.srv != nil {
		ctx := context.Background()
		if r.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.config.ShutdownTimeout)
			defer cancel()
		}
		if err := r.srv.Shutdown(ctx); err != nil {
			_ = r.srv.Close()
		}
		r.srv = nil
	}
	if r.listener != nil {
		_ = r.listener.Close()
		r.listener = nil
	}
}

// Shutdown gracefully stops the daemon.
// Returns ErrNotRunning if the daemon is not running.
// Returns ErrShutdownTimeout if the shutdown function exceeds the configured timeout.
func (r *Runner) Shutdown() error {
	if err := r.validateRunning(); err != nil {
		return err
	}

	if err := r.executeShutdownFunc(); err != nil {
		return err
	}

	r.performShutdown()
	return nil
}

func (r *Runner) validateRunning() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return ErrNotRunning
	}
	return nil
}

// executeShutdownFunc runs the shutdown function with timeout if configured.
func (r *Runner) executeShutdownFunc() error {
	if r.deps.ShutdownFunc == nil {
		return nil
	}

	if r.config.ShutdownTimeout > 0 {
		return r.executeWithTimeout(r.deps.ShutdownFunc, r.config.ShutdownTimeout)
	}

	// The shutdown must proceed regardless of cleanup errors.
	_ = r.deps.ShutdownFunc()
	return nil
}

// executeWithTimeout runs a function with a timeout.
// Returns ErrShutdownTimeout if the function exceeds the timeout.
// Returns the function's error if it completes within the timeout.
func (r *Runner) executeWithTimeout(fn func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		r.forceStop()
		return ErrShutdownTimeout
	}
}

// forceStop cancels Start without waiting for cleanup.
func (r *Runner) forceStop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) performShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
