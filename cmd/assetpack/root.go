package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "assetpack",
	Short: "Bundle, minify and source-map web assets",
	Long: `assetpack groups scripts, stylesheets and other files into named bundles,
minifies and concatenates them, and writes the result with source maps.

Get started:
  assetpack build -c assetpack.yaml --site ./site --out ./public
  assetpack map lookup public/js/app.js.map 0:120`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors and skip the file table")

	viper.SetEnvPrefix("ASSETPACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(mapCmd)
}

// bindFlags lets every flag in fs be set through an ASSETPACK_ environment
// variable as well.
func bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
}

func initLogger() {
	level := zerolog.InfoLevel
	switch {
	case viper.GetBool("debug"):
		level = zerolog.DebugLevel
	case viper.GetBool("quiet"):
		level = zerolog.ErrorLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "assetpack %s\n", Version)
		fmt.Fprintf(out, "Commit: %s\n", Commit)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
	},
}
