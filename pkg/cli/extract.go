package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/cli/config"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdExtract() *cli.Command {
	var (
		storageCfg   config.Storage
		extractorCfg config.Extractor
		asJSON       bool
	)

	flags := slices.Concat(
		storageCfg.Flags(),
		extractorCfg.CLIFlags(),
		[]cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the manifest as JSON",
				Destination: &asJSON,
			},
		},
	)

	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "Extract a .msg file into the staging area and list its contents",
		ArgsUsage: "<file.msg>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return goerr.New("exactly one input file is required")
			}
			input := c.Args().First()

			store, err := storageCfg.Configure()
			if err != nil {
				return err
			}
			cmd, err := extractorCfg.Configure()
			if err != nil {
				return err
			}

			f, err := os.Open(filepath.Clean(input))
			if err != nil {
				return goerr.Wrap(err, "failed to open input file", goerr.V("path", input))
			}
			defer f.Close()

			manifest, err := usecase.NewExtraction(store, cmd).Extract(ctx, &model.Upload{
				Filename: filepath.Base(input),
				Content:  f,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(c.Root().Writer)
				enc.SetIndent("", "  ")
				if err := enc.Encode(manifest); err != nil {
					return goerr.Wrap(err, "failed to encode manifest")
				}
				return nil
			}

			printManifest(c.Root().Writer, manifest)
			return nil
		},
	}
}

// printManifest writes a human readable listing of manifest
func printManifest(w io.Writer, manifest *model.Manifest) {
	header := color.New(color.FgCyan, color.Bold)
	size := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	header.Fprintf(w, "Folder %s\n", manifest.FolderID)
	if len(manifest.Attachments) == 0 {
		faint.Fprintln(w, "  (no files)")
		return
	}

	for _, a := range manifest.Attachments {
		fmt.Fprintf(w, "  %s ", a.RelativePath)
		size.Fprintf(w, "%d bytes ", a.Size)
		faint.Fprintf(w, "%s\n", a.MIME)
	}
}
