package cli

import (
	"github.com/spf13/cobra"

	"leafscan/internal/apperr"
	"leafscan/internal/cli/formatter"
	"leafscan/internal/page"
	"leafscan/internal/result"
)

func newDemoCmd(opts *options) *cobra.Command {
	var plots bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyse the server's sample image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := page.NewClient(opts.server, opts.timeout)
			client.APIKey = opts.apiKey

			body, err := client.Demo(cmd.Context(), plots)
			if err != nil {
				return err
			}
			return display(cmd, body, opts.output)
		},
	}

	cmd.Flags().BoolVar(&plots, "plots", false, "Request diagnostic plots")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml, html)")
	return cmd
}

// display normalises a raw analysis payload and prints it. Payloads that
// report an error are printed as such and fail the command.
func display(cmd *cobra.Command, body []byte, format string) error {
	res, err := result.Normalize(body)
	if err != nil {
		formatter.DisplayError(cmd.OutOrStdout(), apperr.Message(err))
		return err
	}
	return formatter.Display(cmd.OutOrStdout(), res, format)
}
