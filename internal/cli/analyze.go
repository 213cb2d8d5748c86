package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"leafscan/internal/cli/formatter"
	"leafscan/internal/logger"
	"leafscan/internal/page"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var (
		plots      bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze IMAGE",
		Short: "Analyse a leaf image",
		Long: `Upload a PNG or JPEG leaf photo to the analysis server and print the result.

Examples:
  # Human readable diagnosis
  leafscan analyze leaf.jpg

  # Include the diagnostic plots and save the result page
  leafscan analyze leaf.jpg --plots -o html > result.html

  # Also write the PDF report
  leafscan analyze leaf.jpg --report leaf-analysis-report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0], plots, reportPath)
		},
	}

	cmd.Flags().BoolVar(&plots, "plots", false, "Request diagnostic plots")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the PDF report to this path")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml, html)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *options, imagePath string, plots bool, reportPath string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	client := page.NewClient(opts.server, opts.timeout)
	client.APIKey = opts.apiKey

	session := page.NewSession(client, page.WithPlots(plots), page.WithLogger(cliLogger(cmd, opts)))
	if err := session.SelectFile(filepath.Base(imagePath), f); err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Analyzing leaf image..."
	s.Start()
	err = session.Submit(cmd.Context())
	s.Stop()

	out := cmd.OutOrStdout()
	if err != nil {
		formatter.DisplayError(out, session.View().Error)
		return err
	}

	res, _ := session.Result()
	if err := formatter.Display(out, res, opts.output); err != nil {
		return err
	}

	if reportPath != "" {
		return writeSessionReport(cmd.Context(), session, reportPath)
	}
	return nil
}

func writeSessionReport(ctx context.Context, session *page.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := session.DownloadReport(ctx, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("generate report: %w", err)
	}
	return f.Close()
}

func cliLogger(cmd *cobra.Command, opts *options) *logger.Logger {
	if !opts.verbose {
		return logger.Discard()
	}
	return logger.New(cmd.ErrOrStderr(), logger.DEBUG)
}
