// Package cmd wires the process's cobra subcommands: serve, migrate, gendoc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd is the entry point every subcommand attaches to.
var RootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "Classroom attendance server",
	Long: `rollcall runs the attendance server: courses, confirmation codes,
student check-in, and the live presence feed for each course.`,
}

// Execute runs RootCmd, exiting the process with status 1 on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment variables only)")
	RootCmd.PersistentFlags().Bool("db_debug", false, "log every SQL statement")
	_ = viper.BindPFlag("db_debug", RootCmd.PersistentFlags().Lookup("db_debug"))
}

// initConfig loads cfgFile (a .env-style file) into the global viper instance
// if one was given, with AutomaticEnv enabled on it. A missing or unreadable
// cfgFile is not fatal. config.Load builds its own viper instance from
// environment variables only, so values from cfgFile and the --db_debug flag
// do not reach config.Config.
func initConfig() {
	viper.AutomaticEnv()

	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("env")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read config file %s: %v\n", cfgFile, err)
	}
}
