package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"time"
)

// DefaultMaxPixels bounds the decoded size of an analysed image.
const DefaultMaxPixels = 40_000_000

// ErrTooManyPixels rejects images whose dimensions exceed the pixel limit.
var ErrTooManyPixels = errors.New("image exceeds pixel limit")

// MsgUnreadableImage is reported to clients inside a 200 response.
const MsgUnreadableImage = "Image not found or unable to load."

// Result is the wire payload of an analysis.
type Result struct {
	Diagnosis      string            `json:"diagnosis,omitempty"`
	Recommendation string            `json:"recommendation,omitempty"`
	ColorData      *ColorData        `json:"color_data,omitempty"`
	ImageInfo      *ImageInfo        `json:"image_info,omitempty"`
	Plots          map[string]string `json:"plots,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// ColorData holds per-colour pixel statistics.
type ColorData struct {
	Counts      map[string]int     `json:"counts"`
	Proportions map[string]float64 `json:"proportions"`
	Percentages map[string]float64 `json:"percentages"`
}

// ImageInfo describes the decoded image.
type ImageInfo struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	TotalPixels int `json:"total_pixels"`
}

// Options controls a single analysis.
type Options struct {
	IncludePlots bool
}

// Processor classifies leaf images by colour.
type Processor struct {
	Timeout time.Duration
	// PlotWidth and PlotHeight bound the size of generated plot images.
	PlotWidth  uint
	PlotHeight uint
	// MaxPixels rejects larger images before they are decoded.
	MaxPixels int64
}

// NewProcessor returns a Processor with sane defaults.
func NewProcessor() *Processor {
	return &Processor{
		Timeout:    2 * time.Minute,
		PlotWidth:  480,
		PlotHeight: 320,
		MaxPixels:  DefaultMaxPixels,
	}
}

// Analyze decodes the image at imagePath and classifies it. An image that
// cannot be opened, decoded or is larger than MaxPixels yields a Result
// carrying Error, not a Go error.
func (p *Processor) Analyze(ctx context.Context, imagePath string, opts Options) (*Result, error) {
	if imagePath == "" {
		return nil, errors.New("image path is required")
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	img, err := loadImage(imagePath, p.MaxPixels)
	if err != nil {
		return &Result{Error: MsgUnreadableImage}, nil
	}

	scan, err := p.scan(ctx, img, opts.IncludePlots)
	if err != nil {
		return nil, err
	}

	res := buildResult(scan)
	if opts.IncludePlots {
		plots, err := p.renderPlots(scan)
		if err != nil {
			return nil, fmt.Errorf("render plots: %w", err)
		}
		res.Plots = plots
	}
	return res, nil
}

func loadImage(path string, maxPixels int64) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeBounded(data, maxPixels)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeBounded decodes an encoded image after checking from its header that
// it has at most maxPixels pixels. A non-positive maxPixels means
// DefaultMaxPixels.
func DecodeBounded(data []byte, maxPixels int64) (image.Image, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// scanResult carries per-pixel findings from one pass over the image.
type scanResult struct {
	rgb    *image.NRGBA
	hsv    *image.NRGBA
	masks  map[string]*image.Gray
	counts map[string]int
	width  int
	height int
}

func (p *Processor) scan(ctx context.Context, img image.Image, withMasks bool) (*scanResult, error) {
	bounds := img.Bounds()
	rgb := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgb, rgb.Bounds(), img, bounds.Min, draw.Src)

	s := &scanResult{
		rgb:    rgb,
		counts: make(map[string]int, len(colorClasses)),
		width:  bounds.Dx(),
		height: bounds.Dy(),
	}
	for _, class := range colorClasses {
		s.counts[class.Name] = 0
	}
	if withMasks {
		s.hsv = image.NewNRGBA(rgb.Bounds())
		s.masks = make(map[string]*image.Gray, len(colorClasses))
		for _, class := range colorClasses {
			s.masks[class.Name] = image.NewGray(rgb.Bounds())
		}
	}

	for y := 0; y < s.height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan aborted: %w", err)
		}
		row := rgb.Pix[y*rgb.Stride : y*rgb.Stride+s.width*4]
		for x := 0; x < s.width; x++ {
			px := hsvAt(row, x)
			for _, class := range colorClasses {
				if !class.contains(px) {
					continue
				}
				s.counts[class.Name]++
				if withMasks {
					s.masks[class.Name].Pix[y*s.masks[class.Name].Stride+x] = 0xff
				}
			}
			if withMasks {
				o := y*s.hsv.Stride + x*4
				s.hsv.Pix[o], s.hsv.Pix[o+1], s.hsv.Pix[o+2], s.hsv.Pix[o+3] = px.H, px.S, px.V, 0xff
			}
		}
	}
	return s, nil
}

func hsvAt(row []uint8, x int) hsv {
	return rgbToHSV(row[x*4], row[x*4+1], row[x*4+2])
}

func buildResult(s *scanResult) *Result {
	total := s.width * s.height
	proportions := make(map[string]float64, len(s.counts))
	for name, count := range s.counts {
		if total > 0 {
			proportions[name] = float64(count) / float64(total)
		} else {
			proportions[name] = 0
		}
	}

	diagnosis, recommendation := diagnose(proportions)

	data := &ColorData{
		Counts:      s.counts,
		Proportions: make(map[string]float64, len(proportions)),
		Percentages: make(map[string]float64, len(proportions)),
	}
	for name, v := range proportions {
		data.Proportions[name] = roundTo(v, 4)
		data.Percentages[name] = roundTo(v*100, 2)
	}

	return &Result{
		Diagnosis:      diagnosis,
		Recommendation: recommendation,
		ColorData:      data,
		ImageInfo: &ImageInfo{
			Width:       s.width,
			Height:      s.height,
			TotalPixels: total,
		},
	}
}

// diagnose applies the deficiency rules in priority order.
func diagnose(p map[string]float64) (string, string) {
	switch {
	case p["Yellow"] > 0.25:
		return "Nitrogen Deficiency", "Apply a nitrogen-rich fertilizer such as urea or ammonium sulfate."
	case p["Red"] > 0.20:
		return "Phosphorus Deficiency", "Use phosphorus fertilizers like superphosphate or bone meal."
	case p["Brown"] > 0.20:
		return "Potassium Deficiency", "Apply potash-based fertilizers such as potassium sulfate."
	case p["Green"] < 0.40:
		return "General Chlorosis", "Consider a balanced NPK fertilizer and check for issues like poor drainage."
	default:
		return "Healthy", "No fertilizer needed. The plant appears healthy."
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
