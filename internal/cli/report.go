package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"leafscan/internal/analysis"
	"leafscan/internal/page"
	"leafscan/internal/report"
	"leafscan/internal/result"
)

func newReportCmd() *cobra.Command {
	var (
		outPath   string
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "report RESULT.json",
		Short: "Write the PDF report of a saved analysis payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := result.Normalize(body)
			if err != nil {
				return err
			}

			var preview *report.Image
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				if preview, _, err = page.Thumbnail(data, analysis.DefaultMaxPixels); err != nil {
					return fmt.Errorf("decode image: %w", err)
				}
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			if err := report.NewExporter().Export(cmd.Context(), f, res, preview); err != nil {
				f.Close()
				os.Remove(outPath)
				return fmt.Errorf("generate report: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "f", report.Filename, "Output PDF path")
	cmd.Flags().StringVar(&imagePath, "image", "", "Leaf image to embed in the report")
	return cmd
}
