package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
	"github.com/todostudio/todostudio/internal/config"
)

var configFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "show-secret",
		Usage: "print the RPC secret instead of masking it",
	},
	cli.BoolFlag{
		Name:  "write",
		Usage: "save the effective configuration to the config file",
	},
}

func showConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "config", "load_config", err)
		return nil
	}
	if ctx.Bool("write") {
		return writeConfig(ctx, cfg)
	}
	out, err := cfg.Encode(ctx.Bool("show-secret"))
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "config", "encode", err)
		return nil
	}
	if cfg.Path != "" {
		fmt.Printf("# %s\n", cfg.Path)
	} else {
		fmt.Println("# defaults (no config file)")
	}
	fmt.Print(out)
	return nil
}

func writeConfig(ctx *cli.Context, cfg *config.Config) error {
	path := cfg.Path
	if path == "" {
		path = filepath.Join(cfg.Dir, config.FileName)
	}
	if err := cfg.Save(appFs, path); err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "config", "save", err)
		return nil
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
