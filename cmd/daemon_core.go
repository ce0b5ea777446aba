package cmd

import (
	"context"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/todostudio/todostudio/internal/config"
	idaemon "github.com/todostudio/todostudio/internal/daemon"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/internal/server"
	"github.com/todostudio/todostudio/internal/studio"
	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

// newSink picks the notification backend. Swapped in tests.
var newSink = func(cfg *config.Config, log logger.Logger) notify.Sink {
	if cfg.Notifications.Backend == config.BackendNone {
		return notify.NopSink{}
	}
	return notify.NewDBusSink(config.AppName, cfg.Permission(), cfg.Notifications.PermissionTimeout, log)
}

// DaemonComponents holds all initialized daemon components so they can be
// torn down together.
type DaemonComponents struct {
	Config   *config.Config
	Sink     notify.Sink
	Notifier *notify.Notifier
	Studio   *studio.Studio
	Server   *server.Server
	Runner   *idaemon.Runner
	logger   logger.Logger
}

// Close releases all daemon component resources in reverse order of
// initialization and reports every failure.
func (c *DaemonComponents) Close() error {
	c.logger.Info("Shutting down daemon...")
	var result *multierror.Error
	if c.Server != nil {
		if err := c.Server.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.Studio != nil {
		c.Studio.Close()
	}
	if closer, ok := c.Sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.logger.Info("Daemon stopped")
	return result.ErrorOrNil()
}

// initDaemonComponents wires the notifier, studio, RPC server and runner.
// ctx bounds reminder delivery and should be canceled after the runner stops.
var initDaemonComponents = func(ctx context.Context, cfg *config.Config, secret string, log logger.Logger) (*DaemonComponents, error) {
	sink := newSink(cfg, log)
	notifier := notify.NewNotifier(sink, notify.NewWriterAlerter(os.Stdout), log)

	var seed []todolib.Task
	if cfg.Tasks.SeedExamples {
		seed = todolib.ExampleTasks()
	}
	st := studio.New(ctx, todolib.NewList(seed...), notifier, &studio.Options{Logger: log})

	srv := server.NewServer(&server.RPCConfig{
		Secret:    secret,
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	}, st, log)
	notifier.Observe(srv.Deliver)

	c := &DaemonComponents{
		Config:   cfg,
		Sink:     sink,
		Notifier: notifier,
		Studio:   st,
		Server:   srv,
		logger:   log,
	}
	c.Runner = idaemon.New(&idaemon.Config{
		Addr:            cfg.Listen,
		ShutdownTimeout: 5 * time.Second,
	}, &idaemon.Dependencies{
		Handler:      srv.Handler(),
		ShutdownFunc: srv.Close,
		ErrorLog:     logger.ToStdLogger(log),
	})
	return c, nil
}
