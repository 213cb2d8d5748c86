package analysis

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
)

const (
	chartWidth   = 640
	chartHeight  = 400
	chartMargin  = 40
	chartBarGap  = 24
	chartAxisPad = 2
)

var barColors = map[string]color.NRGBA{
	"Green":  {R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	"Yellow": {R: 0xff, G: 0xd7, B: 0x00, A: 0xff},
	"Red":    {R: 0xd0, G: 0x20, B: 0x20, A: 0xff},
	"Brown":  {R: 0xa5, G: 0x2a, B: 0x2a, A: 0xff},
}

// renderPlots encodes the diagnostic images as base64 PNGs keyed by name.
func (p *Processor) renderPlots(s *scanResult) (map[string]string, error) {
	plots := make(map[string]string, len(colorClasses)+3)

	add := func(name string, img image.Image) error {
		encoded, err := encodePNG(img)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		plots[name] = encoded
		return nil
	}

	if err := add("original_image", p.fit(s.rgb)); err != nil {
		return nil, err
	}
	if err := add("hsv_image", p.fit(s.hsv)); err != nil {
		return nil, err
	}
	for _, class := range colorClasses {
		name := strings.ToLower(class.Name) + "_mask"
		if err := add(name, p.fit(s.masks[class.Name])); err != nil {
			return nil, err
		}
	}
	if err := add("color_proportions", proportionChart(s)); err != nil {
		return nil, err
	}
	return plots, nil
}

func (p *Processor) fit(img image.Image) image.Image {
	if p.PlotWidth == 0 || p.PlotHeight == 0 {
		return img
	}
	return resize.Thumbnail(p.PlotWidth, p.PlotHeight, img, resize.Bilinear)
}

// proportionChart draws one bar per colour on a 0..1 scale.
func proportionChart(s *scanResult) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	axis := image.NewUniform(color.Black)
	plotTop, plotBottom := chartMargin, chartHeight-chartMargin
	plotLeft, plotRight := chartMargin, chartWidth-chartMargin
	draw.Draw(img, image.Rect(plotLeft-chartAxisPad, plotTop, plotLeft, plotBottom), axis, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(plotLeft-chartAxisPad, plotBottom, plotRight, plotBottom+chartAxisPad), axis, image.Point{}, draw.Src)

	total := s.width * s.height
	n := len(colorClasses)
	slot := (plotRight - plotLeft) / n
	for i, class := range colorClasses {
		proportion := 0.0
		if total > 0 {
			proportion = float64(s.counts[class.Name]) / float64(total)
		}
		if proportion > 1 {
			proportion = 1
		}
		height := int(proportion * float64(plotBottom-plotTop))
		x0 := plotLeft + i*slot + chartBarGap/2
		x1 := plotLeft + (i+1)*slot - chartBarGap/2
		bar := image.Rect(x0, plotBottom-height, x1, plotBottom)
		draw.Draw(img, bar, image.NewUniform(barColors[class.Name]), image.Point{}, draw.Src)
	}
	return img
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
