// Package cli holds the leafscan commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server  string
	apiKey  string
	output  string
	timeout time.Duration
	verbose bool
}

// NewRootCmd builds the leafscan command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "leafscan",
		Short: "Leaf nutrient deficiency analysis from the terminal",
		Long: `leafscan sends leaf photos to a leafscan server, prints the diagnosis and
renders the same result page and PDF report as the web interface.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	server := os.Getenv("LEAFSCAN_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "Analysis server URL (env LEAFSCAN_SERVER)")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("LEAFSCAN_API_KEY"), "API key sent as x-api-key (env LEAFSCAN_API_KEY)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newDemoCmd(opts),
		newRenderCmd(opts),
		newReportCmd(),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "leafscan version %s\n", version)
		},
	}
}
