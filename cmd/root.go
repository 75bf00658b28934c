// Package cmd implements CLI commands using the cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

// Global flags
var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strix",
	Short: "Strix - offline session-description inspector",
	Long: `Strix replays captured traffic or raw payload dumps, locates
session-description (SDP) payloads and classifies them line by line into a
field report.

Features:
  - pcap file replay with port filtering, no live capture
  - plugin architecture: parser and reporter plugins
  - tolerant parsing: malformed lines are reported, never fatal`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(fieldsCmd)
}
