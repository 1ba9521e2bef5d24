package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/cli/config"
	"github.com/m-mizutani/msgbox/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSweep() *cli.Command {
	var (
		storageCfg   config.Storage
		retentionCfg config.Retention
	)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete uploads and extracted folders older than --retention-max-age once",
		Flags: slices.Concat(storageCfg.Flags(), retentionCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if !retentionCfg.Enabled() {
				return goerr.New("--retention-max-age must be positive for sweep")
			}

			store, err := storageCfg.Configure()
			if err != nil {
				return err
			}

			result, err := usecase.NewRetention(store, retentionCfg.MaxAge).Sweep(ctx)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			for _, p := range result.Removed {
				fmt.Fprintf(w, "%s %s\n", color.RedString("removed"), p)
			}
			fmt.Fprintf(w, "%d entries removed\n", len(result.Removed))
			return nil
		},
	}
}
