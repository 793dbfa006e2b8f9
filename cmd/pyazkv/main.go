package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pyazkv",
	Short: "Run key-value programs against swappable stores",
	Long: `pyazkv builds programs of put/get/delete commands and runs them,
in order, against an in-memory, bolt, Raft-replicated or remote store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
}

func newLogger(cmd *cobra.Command, name string) hclog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.LevelFromString(level),
		Output: os.Stderr,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
