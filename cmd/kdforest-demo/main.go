// Command kdforest-demo exercises the kdforest package from the command
// line: build a forest over synthetic or CSV-loaded points, query it, and
// benchmark exact search against the approximate, comparison-budgeted mode.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kdforest-demo",
	Short: "Build, query, and benchmark randomized KD-tree forests",
	Long: `kdforest-demo drives the kdforest nearest-neighbor engine: it can
build a forest over generated or CSV-loaded points, run exact or
approximate k-NN queries against it, and benchmark recall against a
comparison budget.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $PWD/.kdforest.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newBenchCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".kdforest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("KDFOREST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			zerolog.New(os.Stderr).Warn().Err(err).Msg("failed to read config file")
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
