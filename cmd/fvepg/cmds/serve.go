package cmds

import (
	"errors"
	"fmt"
	"time"

	"fvepg/internal/app/router"

	"github.com/spf13/cobra"
)

var httpConfig HTTPConfig

type HTTPConfig struct {
	Port     int           `json:"port"`
	Interval time.Duration `json:"interval"`
}

func NewServeCLI() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service providing the guide and channel query endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate the configuration file
			if err := conf.Validate(); err != nil {
				return err
			}

			// Refuse refresh intervals that hammer the upstreams
			if httpConfig.Interval < 15*time.Minute {
				return errors.New("interval cannot be less than 15 minutes")
			}

			// Create and start the HTTP service
			r, err := router.NewEngine(cmd.Context(), conf, httpConfig.Interval)
			if err != nil {
				return err
			}
			if err = r.Run(fmt.Sprintf(":%d", httpConfig.Port)); err != nil {
				return err
			}

			return nil
		},
	}

	serveCmd.Flags().IntVarP(&httpConfig.Port, "port", "p", 8080, "Listen port of the HTTP service.")
	serveCmd.Flags().DurationVarP(&httpConfig.Interval, "interval", "i", 24*time.Hour, "Refresh interval of the guide data, e.g. `24h or 15m`.")

	return serveCmd
}
