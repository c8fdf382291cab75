package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/promptlab/internal/display"
	"github.com/raysh454/promptlab/internal/loader"
	"github.com/raysh454/promptlab/internal/webclient"
)

// checkedDisplay is an output area that reports whether its last write
// reached the destination.
type checkedDisplay interface {
	loader.Display
	Err() error
}

type loadOptions struct {
	mode         string
	problemID    string
	baseURL      string
	backend      string
	out          string
	failOnStatus bool
}

func newLoadCommand(g *globals) *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Fetch the problem for a mode and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, g, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.mode, "mode", "m", "", "practice mode sent as the mode query parameter")
	f.StringVar(&opts.problemID, "problem", "", "problem id")
	f.StringVar(&opts.baseURL, "base-url", "", "API base URL")
	f.StringVar(&opts.backend, "backend", "", "web client backend (nethttp|chromedp)")
	f.StringVarP(&opts.out, "out", "o", "", "write the result to this file instead of stdout")
	f.BoolVar(&opts.failOnStatus, "fail-on-status", false, "treat non-2xx responses as failures")
	return cmd
}

func runLoad(cmd *cobra.Command, g *globals, opts *loadOptions) error {
	a, err := g.application(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg := a.Config

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = opts.mode
	}
	if flags.Changed("problem") {
		cfg.Loader.ProblemID = opts.problemID
	}
	if flags.Changed("base-url") {
		cfg.Loader.BaseURL = opts.baseURL
	}
	if flags.Changed("backend") {
		cfg.WebClient.Client = webclient.Client(opts.backend)
	}
	if flags.Changed("fail-on-status") {
		cfg.Loader.FailOnStatus = opts.failOnStatus
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var out checkedDisplay = display.NewWriterDisplay(cmd.OutOrStdout(), a.Logger)
	if opts.out != "" {
		out = display.NewFileDisplay(opts.out, a.Logger)
	}

	l, wc, err := a.NewLoader(display.StaticMode(cfg.Mode), out)
	if err != nil {
		return err
	}
	defer wc.Close()

	o := l.Load(cmd.Context())
	if err := out.Err(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !o.OK() {
		return fmt.Errorf("load %s: %w", o.URL, o.Err)
	}
	return nil
}
