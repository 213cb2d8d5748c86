package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"leafscan/internal/cli/formatter"
)

func newRenderCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render RESULT.json",
		Short: "Render a saved analysis payload",
		Long: `Render an analysis JSON payload (as returned by /api/analyze) in any output
format. Use "-" to read the payload from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			return display(cmd, body, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatter.FormatHTML, "Output format (human, json, yaml, html)")
	return cmd
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return body, nil
}
