package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/raysh454/promptlab/internal/display"
	"github.com/raysh454/promptlab/internal/tui"
)

func newTUICommand(g *globals) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Pick a mode and load problems interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.application(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				a.Config.Mode = mode
			}

			mv := display.NewModeVar(a.Config.Mode)
			area := &display.TextArea{}
			l, wc, err := a.NewLoader(mv, area)
			if err != nil {
				return err
			}
			defer wc.Close()

			m := tui.NewModel(cmd.Context(), l, a.Config.Modes, mv, area)
			if err := tui.Run(cmd.Context(), m); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "initially selected mode")
	return cmd
}
