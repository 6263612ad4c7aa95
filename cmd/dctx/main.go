// Command dctx snapshots a directory tree into a versioned binary
// archive and LLM-readable text manifest, updating both in place on
// each run and emitting a diff file when the prior snapshot changed.
//
// The CLI shell follows evmts-agent's urfave/cli/v2 pattern (a single
// cli.App with a flag set and an Action closure) rather than the
// teacher's stdlib flag package, since the pack's own agent CLIs
// standardize on urfave/cli for exactly this shape of tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Eris-Margeta/dircontxt/internal/dctxerr"
	"github.com/Eris-Margeta/dircontxt/internal/dctxlog"
	"github.com/Eris-Margeta/dircontxt/internal/snapshot"
)

const appVersion = "1.0.0"

func main() {
	app := &cli.App{
		Name:    "dctx",
		Usage:   "versioned, diff-aware directory snapshots for LLM context",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "clipboard",
				Aliases: []string{"c"},
				Usage:   "copy the manifest to the clipboard instead of writing a manifest file",
			},
			&cli.BoolFlag{
				Name:  "fresh",
				Usage: "ignore any prior snapshot and start over at V1",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress informational log lines",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "emit per-stage debug log lines",
			},
		},
		Args:      true,
		ArgsUsage: "<path>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		dctxlog.Error("%v", err)
		var derr *dctxerr.Error
		if errors.As(err, &derr) {
			os.Exit(1)
		}
		// Anything not wrapped as a dctxerr.Error came from cli's own
		// flag/argument parsing, the teacher's os.Exit(2)-for-usage
		// convention in cmd/class-collector/main.go.
		os.Exit(2)
	}
}

func run(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "."
	}
	dctxlog.SetQuiet(c.Bool("quiet"))
	dctxlog.SetVerbose(c.Bool("verbose"))

	res, err := snapshot.Run(snapshot.Options{
		Path:      path,
		Clipboard: c.Bool("clipboard"),
		Fresh:     c.Bool("fresh"),
	})
	if err != nil {
		return err
	}

	if !res.Changed {
		fmt.Printf("no changes; staying at %s\n", res.FromVersion)
		return nil
	}

	fmt.Printf("%s -> %s (%d changes)\n", res.FromVersion, res.ToVersion, res.DiffEntries)
	if res.BinaryPath != "" {
		fmt.Printf("archive:  %s\n", res.BinaryPath)
	}
	if res.ManifestPath != "" {
		fmt.Printf("manifest: %s\n", res.ManifestPath)
	}
	if res.DiffPath != "" {
		fmt.Printf("diff:     %s\n", res.DiffPath)
	}
	return nil
}
