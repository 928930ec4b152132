package cmd

import (
	"log"

	"github.com/rollcall/server/api"
	"github.com/rollcall/server/config"
	"github.com/rollcall/server/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start http server with configured api",
	Long:  `Starts a http server and serves the configured api`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logging.Configure(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

		server, err := api.NewServer(cfg)
		if err != nil {
			log.Fatal(err)
		}
		server.Start()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	viper.SetDefault("server_port", "8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
}
