// varhint reports best-effort types for Python variables under a caret.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/varhint/internal/config"
	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/hint"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// app carries the shared flags and the components built from them.
type app struct {
	stdout, stderr io.Writer

	configPath string
	verbose    bool

	cfg      config.Config
	logger   *log.Logger
	store    *document.Store
	analyzer *hint.Analyzer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "varhint",
		Short: "Show the inferred type of the Python variable under the caret",
		Long: `varhint infers a best-effort type label for Python variables: the variable
under a caret position, every binding in a directory, or a live stream of
caret events as an editor would send them.

Inference is single-file and structural. It follows assignments, literals,
arithmetic, calls and annotations, and answers "Unknown type" rather than
failing.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log scheduling and inference diagnostics to stderr")
	cmd.PersistentFlags().Int("max-depth", 0, "inference recursion bound (default from config)")

	cmd.AddCommand(
		newAtCmd(a),
		newScanCmd(a),
		newReplayCmd(a),
		newMCPCmd(a),
	)
	return cmd
}

// setup loads the config, applies flag overrides and builds the shared
// document store and analyzer.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("max-depth"); f != nil && f.Changed {
		depth, err := cmd.Flags().GetInt("max-depth")
		if err != nil {
			return err
		}
		cfg.MaxDepth = depth
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	out := io.Discard
	if a.verbose {
		out = a.stderr
	}
	a.logger = log.New(out, "varhint: ", log.LstdFlags)
	a.store = document.NewStore(cfg.CacheTTL)
	a.analyzer = hint.New(hint.WithMaxDepth(cfg.MaxDepth), hint.WithLogger(a.logger))
	return nil
}
