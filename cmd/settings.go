package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
	"github.com/todostudio/todostudio/internal/config"
	"github.com/todostudio/todostudio/pkg/credman/keyring"
	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todocli"
)

// appFs is swapped in tests.
var appFs = afero.NewOsFs()

// tokenStores lists where the RPC token is looked up, keyring first.
// Swapped in tests.
var tokenStores = func(cfg *config.Config) []keyring.TokenStore {
	return []keyring.TokenStore{
		keyring.NewKeyring(),
		keyring.NewFileTokenStore(appFs, cfg.Dir),
	}
}

const dialTimeout = 5 * time.Second

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config",
		Usage: "path to the config file",
	},
	cli.StringFlag{
		Name:  "listen",
		Usage: "daemon address (host:port)",
	},
	cli.StringFlag{
		Name:  "token",
		Usage: "RPC bearer token",
	},
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(appFs, ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if v := ctx.GlobalString("listen"); v != "" {
		cfg.Listen = v
	}
	if v := ctx.GlobalString("token"); v != "" {
		cfg.RPCSecret = v
	}
	return cfg, nil
}

// resolveToken returns the configured secret, else the stored token. The
// daemon passes create to generate one on first start.
func resolveToken(cfg *config.Config, create bool) (string, error) {
	if cfg.RPCSecret != "" {
		return cfg.RPCSecret, nil
	}
	return keyring.Resolve(create, tokenStores(cfg)...)
}

// newLogger writes leveled logs to stderr.
func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewLeveledLogger(log.New(os.Stderr, "", log.LstdFlags), cfg.Level())
}

const daemonLogName = "daemon.log"

// fileLogger closes its file with the logger.
type fileLogger struct {
	*logger.StandardLogger
	f afero.File
}

func (l *fileLogger) Close() error {
	return l.f.Close()
}

// newDaemonLogger logs to stderr and appends to daemon.log in the config
// directory. A log file that cannot be opened leaves stderr only.
func newDaemonLogger(cfg *config.Config) logger.Logger {
	console := newLogger(cfg)
	if err := appFs.MkdirAll(cfg.Dir, 0755); err != nil {
		console.Warning("Could not create %s: %v", cfg.Dir, err)
		return console
	}
	path := filepath.Join(cfg.Dir, daemonLogName)
	f, err := appFs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		console.Warning("Could not open log file %s: %v", path, err)
		return console
	}
	file := &fileLogger{
		StandardLogger: logger.NewLeveledLogger(log.New(f, "", log.LstdFlags), cfg.Level()),
		f:              f,
	}
	return logger.NewMultiLogger(console, file)
}

// newClient loads the config and dials the daemon. Failures are printed and
// reported as a nil client.
func newClient(ctx *cli.Context, cmdName string, opts *todocli.Options) *todocli.Client {
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, cmdName, "load_config", err)
		return nil
	}
	token, err := resolveToken(cfg, false)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, cmdName, "resolve_token", err)
		return nil
	}
	if opts == nil {
		opts = &todocli.Options{}
	}
	opts.Token = token
	dctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	client, err := todocli.Dial(dctx, cfg.Listen, opts)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, cmdName, "new_client", fmt.Errorf("%w (is 'todostudio daemon' running?)", err))
		return nil
	}
	client.CheckVersionMismatch(dctx, os.Stderr, currentBuildArgs.Version)
	return client
}
