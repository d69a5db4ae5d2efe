// Package cli implements the linemock command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/fieldlinehq/linemock/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	baseURL    string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linemock",
	Short: "linemock is a local emulator for the Fieldline mission API",
	Long: `linemock runs a local stand-in for the Fieldline mission management API so
integration code can be developed and tested without vendor credentials or
network access. It serves the login, mission, and fixture endpoints plus a
debug surface for resetting and inspecting state between test runs.

Client commands (status, check, missions, reset) talk to a running emulator;
the target defaults to http://localhost:5000 and can be changed with --url or
the LINEMOCK_URL environment variable.`,
	// No Run function here means 'linemock' with no args prints help text.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultBaseURL() string {
	if url := config.BaseURLFromEnv(); url != "" {
		return url
	}
	return client.DefaultBaseURL
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", defaultBaseURL(), "Emulator base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
