// Package formatter prints analysis results for the terminal.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"

	"leafscan/internal/render"
	"leafscan/internal/result"
	"leafscan/pkg"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatHTML  = "html"

	wrapWidth = 76
	barWidth  = 20
)

// Formats lists the accepted output formats.
var Formats = []string{FormatHuman, FormatJSON, FormatYAML, FormatHTML}

// Display writes res to w in the given format.
func Display(w io.Writer, res result.Result, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return pkg.PrintJSON(w, res)
	case FormatYAML:
		return displayYAML(w, res)
	case FormatHTML:
		return render.Result(w, res, render.Actions{})
	case FormatHuman, "":
		displayHuman(w, res)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// DisplayError prints a failed analysis the way the page shows it.
func DisplayError(w io.Writer, message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(w, "An error occurred during analysis.")
	fmt.Fprintf(w, "   %s\n", message)
}

func displayYAML(w io.Writer, res result.Result) error {
	output, err := yaml.Marshal(res)
	if err != nil {
		return err
	}
	_, err = w.Write(output)
	return err
}

func displayHuman(w io.Writer, res result.Result) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	if res.HasDiagnosis() {
		severityColor(res.Diagnosis).Fprintf(w, "DIAGNOSIS: %s\n", res.Diagnosis)
		fmt.Fprintf(w, "   Severity: %s %d%%\n", bar(res.SeverityPercent()), res.SeverityPercent())
		fmt.Fprintf(w, "   Detection Confidence: %d%%\n\n", res.SeverityPercent())
	}

	if len(res.Recommendations) > 0 {
		green.Fprintln(w, "RECOMMENDATIONS:")
		for i, rec := range res.Recommendations {
			fmt.Fprintf(w, "   %d. %s\n", i+1, indent(wordwrap.String(rec, wrapWidth), "      "))
		}
		fmt.Fprintln(w)
	}

	if res.HasColorData {
		cyan.Fprintln(w, "COLOR ANALYSIS:")
		for _, c := range res.Colors {
			fmt.Fprintf(w, "   %-10s %s\n", c.Name, result.FormatPercent(c.Value))
		}
		fmt.Fprintln(w)
	}

	if res.ImageInfo != nil {
		white.Fprintln(w, "IMAGE:")
		fmt.Fprintf(w, "   %dx%d (%d pixels)\n\n", res.ImageInfo.Width, res.ImageInfo.Height, res.ImageInfo.TotalPixels)
	}

	if len(res.Plots) > 0 {
		fmt.Fprintf(w, "%s\n", color.HiBlackString("%d plots available, use -o html to view them", len(res.Plots)))
	}
}

func severityColor(diagnosis string) *color.Color {
	if strings.EqualFold(diagnosis, "healthy") {
		return color.New(color.FgGreen, color.Bold)
	}
	return color.New(color.FgYellow, color.Bold)
}

func bar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// indent prefixes every line after the first.
func indent(text, prefix string) string {
	return strings.ReplaceAll(text, "\n", "\n"+prefix)
}
