// Package cli is the promptlab command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raysh454/promptlab/internal/app"
	"github.com/raysh454/promptlab/internal/logging"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	envFile    string
	logLevel   string
}

// NewRootCommand builds the command tree. Logs go to the command's error
// stream so stdout carries only the rendered result.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "promptlab",
		Short:         "Load prompt-writing practice problems",
		Long:          `promptlab fetches a practice problem for the selected mode and renders it, or serves the problem catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newLoadCommand(g),
		newTUICommand(g),
		newServeCommand(g),
		newBackendsCommand(),
	)
	return root
}

// Execute runs the root command until completion or an interrupt signal.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "promptlab:", err)
		stop()
		os.Exit(1)
	}
}

// application loads the config (dotenv, YAML, environment) and builds the
// Application for one command run.
func (g *globals) application(logOut io.Writer) (*app.Application, error) {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	cfg, err := app.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	logger := logging.NewLogger("promptlab", logOut, logging.ParseLevel(cfg.LogLevel))
	return app.NewApplication(cfg, logger, logOut)
}
