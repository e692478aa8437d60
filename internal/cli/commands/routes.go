package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labbench/testbench/internal/api"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/router"
)

func newRoutesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List every HTTP route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := api.NewRouter(api.Config{
				Prefix:  a.cfg.Server.APIPrefix,
				Logger:  a.logger,
				Metrics: middleware.NewMetrics(),
			})
			routes, err := r.Routes()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), router.RouteList(routes))
			return nil
		},
	}
}
