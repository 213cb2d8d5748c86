package page

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"

	"leafscan/internal/analysis"
	"leafscan/internal/logger"
	"leafscan/internal/render"
	"leafscan/internal/report"
)

const (
	thumbnailSide    = 480
	thumbnailQuality = 85
)

// File is one entry of a drop event.
type File struct {
	Name   string
	Reader io.Reader
}

type selection struct {
	name    string
	data    []byte
	dataURL string
	preview *report.Image
}

// newSelection reads the file and prepares its preview. Files that do not
// decode as images are still accepted so the server can reject them.
func newSelection(name string, r io.Reader) (*selection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	sel := &selection{name: name, data: data}
	if preview, dataURL, err := Thumbnail(data, analysis.DefaultMaxPixels); err == nil {
		sel.preview = preview
		sel.dataURL = dataURL
	}
	return sel, nil
}

// Thumbnail scales an encoded image of at most maxPixels pixels down to a
// JPEG preview and returns it together with its data URL.
func Thumbnail(data []byte, maxPixels int64) (*report.Image, string, error) {
	img, err := analysis.DecodeBounded(data, maxPixels)
	if err != nil {
		return nil, "", err
	}
	thumb := resize.Thumbnail(thumbnailSide, thumbnailSide, img, resize.Lanczos3)

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, "", fmt.Errorf("encode thumbnail: %w", err)
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return &report.Image{Type: "JPG", Data: buf.Bytes()}, dataURL, nil
}

// SelectFile replaces the selected file and renders its preview.
func (s *Session) SelectFile(name string, r io.Reader) error {
	if r == nil {
		return nil
	}
	s.mu.Lock()
	busy := s.state == Submitting
	s.mu.Unlock()
	if busy {
		return ErrSubmitInFlight
	}

	sel, err := newSelection(name, r)
	if err != nil {
		return err
	}
	html, err := render.HTML(func(w io.Writer) error {
		return render.Preview(w, sel.dataURL, sel.name)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrSubmitInFlight
	}
	s.file = sel
	s.view.Preview = html
	s.view.HasImage = true
	s.state = FileSelected
	s.log.Debug("file selected", logger.Fields{"name": name, "bytes": len(sel.data)})
	return nil
}

// DragOver shows the drop hint.
func (s *Session) DragOver() {
	s.mu.Lock()
	s.view.DragOver = true
	s.mu.Unlock()
}

// DragLeave hides the drop hint.
func (s *Session) DragLeave() {
	s.mu.Lock()
	s.view.DragOver = false
	s.mu.Unlock()
}

// Drop hides the drop hint and selects the first dropped file.
func (s *Session) Drop(files []File) error {
	s.DragLeave()
	if len(files) == 0 {
		return nil
	}
	return s.SelectFile(files[0].Name, files[0].Reader)
}
