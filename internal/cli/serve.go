package cli

import (
	"github.com/spf13/cobra"

	"github.com/raysh454/promptlab/internal/catalog"
)

func newServeCommand(g *globals) *cobra.Command {
	var (
		addr   string
		driver string
		dsn    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the problem catalog API and test page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.application(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				a.Config.Server.ListenAddr = addr
			}
			if flags.Changed("catalog-driver") {
				a.Config.Catalog.Driver = catalog.Driver(driver)
			}
			if flags.Changed("catalog-dsn") {
				a.Config.Catalog.DSN = dsn
			}
			if err := a.Config.Validate(); err != nil {
				return err
			}

			srv, store, err := a.NewServer(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			return srv.Run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address")
	f.StringVar(&driver, "catalog-driver", "", "catalog store (memory|sqlite)")
	f.StringVar(&dsn, "catalog-dsn", "", "sqlite database path")
	return cmd
}
