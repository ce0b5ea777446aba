package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
)

// token prints the RPC token, for clients that are not built on todocli.
func token(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "token", "load_config", err)
		return nil
	}
	tok, err := resolveToken(cfg, false)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "token", "resolve_token", fmt.Errorf("%w (start the daemon once to create it)", err))
		return nil
	}
	fmt.Println(tok)
	return nil
}
