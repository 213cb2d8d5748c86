// Package result turns the analysis payloads served by the backend into one
// canonical Result. Two historical shapes are accepted: deficiency or
// diagnosis for the label, recommendations (list) or recommendation (string),
// and plots as either a list or a name-keyed object.
package result

import (
	"fmt"
	"math"
	"strings"
)

// DefaultConfidence applies when the payload carries no confidence.
const DefaultConfidence = 0.75

// Result is the canonical, render-ready analysis.
type Result struct {
	Diagnosis       string       `json:"diagnosis,omitempty" yaml:"diagnosis,omitempty"`
	Confidence      float64      `json:"confidence" yaml:"confidence"`
	ConfidenceSet   bool         `json:"confidence_set" yaml:"confidence_set"`
	Recommendations []string     `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	HasColorData    bool         `json:"has_color_data" yaml:"has_color_data"`
	Colors          []ColorShare `json:"colors,omitempty" yaml:"colors,omitempty"`
	Counts          []ColorShare `json:"counts,omitempty" yaml:"counts,omitempty"`
	Proportions     []ColorShare `json:"proportions,omitempty" yaml:"proportions,omitempty"`
	Plots           []Plot       `json:"plots,omitempty" yaml:"plots,omitempty"`
	ImageInfo       *ImageInfo   `json:"image_info,omitempty" yaml:"image_info,omitempty"`
}

// ColorShare is one colour and its value, kept in payload order.
type ColorShare struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Plot is a base64-encoded PNG. Plots from a list carry no caption.
type Plot struct {
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
	Labeled bool   `json:"labeled" yaml:"labeled"`
	Data    string `json:"-" yaml:"-"`
}

// ImageInfo describes the analysed image.
type ImageInfo struct {
	Width       int `json:"width" yaml:"width"`
	Height      int `json:"height" yaml:"height"`
	TotalPixels int `json:"total_pixels" yaml:"total_pixels"`
}

// HasDiagnosis reports whether a diagnosis card should be shown.
func (r Result) HasDiagnosis() bool {
	return r.Diagnosis != ""
}

// EffectiveConfidence is the payload confidence or DefaultConfidence.
func (r Result) EffectiveConfidence() float64 {
	if !r.ConfidenceSet {
		return DefaultConfidence
	}
	return r.Confidence
}

// SeverityPercent is the confidence as a whole percentage.
func (r Result) SeverityPercent() int {
	return int(math.Round(r.EffectiveConfidence() * 100))
}

// FormatPercent renders a percentage with two decimals and a trailing %.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Caption turns a plot key like "leaf_spot" into "LEAF SPOT".
func Caption(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "_", " "))
}
