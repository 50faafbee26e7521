package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/notes-summarizer/internal/common"
)

var (
	cfg    *common.Config
	logger *slog.Logger

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "YAML config file (environment variables take precedence)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")

	rootCmd.SilenceErrors = true
	rootCmd.PersistentPreRunE = initConfig

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.Error("summaryd failed", "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "summaryd",
	Short:        "Summarize meeting notes into decisions, action items and risks",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		info, ok := debug.ReadBuildInfo()
		if !ok {
			_, _ = fmt.Fprintln(out, "summaryd: version info not available")
			return
		}
		_, _ = fmt.Fprintf(out, "summaryd: %s\n", info.Main.Version)
		_, _ = fmt.Fprintf(out, "go:       %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				_, _ = fmt.Fprintf(out, "commit:   %s\n", s.Value)
			case "vcs.time":
				_, _ = fmt.Fprintf(out, "date:     %s\n", s.Value)
			}
		}
	},
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd {
		return nil
	}
	c, err := common.LoadConfig(flagConfigFilePath)
	if err != nil {
		return err
	}
	if flagVerbose {
		c.Log.Level = "debug"
	}
	cfg = c

	// stdout stays clean for command output
	logger = common.NewLogger(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)
	return cfg.Validate()
}
