package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leafscan/internal/result"
)

var textOp = regexp.MustCompile(`\(([^()]*)\) Tj`)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
}

func sampleResult() result.Result {
	return result.Result{
		Diagnosis:       "Nitrogen Deficiency",
		Recommendations: []string{"Apply a nitrogen-rich fertilizer such as urea or ammonium sulfate."},
		HasColorData:    true,
		Colors: []result.ColorShare{
			{Name: "Yellow", Value: 45.2},
			{Name: "Green", Value: 30},
		},
	}
}

func sampleJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{0, 160, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestExport_Content(t *testing.T) {
	exp := NewExporter(WithClock(fixedClock), WithCompression(false))

	var buf bytes.Buffer
	err := exp.Export(context.Background(), &buf, sampleResult(), &Image{Type: "JPEG", Data: sampleJPEG(t)})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("not a pdf: %q", out[:16])
	}
	for _, want := range []string{
		"(Leaf Nutrient Deficiency Analysis)",
		"(Report generated: 6/1/2025, 2:30:00 PM)",
		"(Detected Deficiency)",
		"(Nitrogen Deficiency)",
		"(Confidence: 75%)",
		"(Recommendations)",
		"(Color Analysis)",
		"(Percentage)",
		"(45.20%)",
		"(30.00%)",
		"(Leaf Nutrient Deficiency Analyzer)",
		"/Subtype /Image",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestExport_SkipsAbsentSections(t *testing.T) {
	exp := NewExporter(WithClock(fixedClock), WithCompression(false))

	var buf bytes.Buffer
	if err := exp.Export(context.Background(), &buf, result.Result{}, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	for _, absent := range []string{"(Detected Deficiency)", "(Recommendations)", "(Color Analysis)", "/Subtype /Image"} {
		if strings.Contains(out, absent) {
			t.Errorf("report should not contain %q", absent)
		}
	}
}

func TestExport_WrapsLongRecommendations(t *testing.T) {
	exp := NewExporter(WithClock(fixedClock), WithCompression(false))
	long := strings.Repeat("Consider a balanced NPK fertilizer and check drainage. ", 6)
	res := result.Result{Recommendations: []string{long}}

	var buf bytes.Buffer
	if err := exp.Export(context.Background(), &buf, res, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := 0
	for _, m := range textOp.FindAllStringSubmatch(buf.String(), -1) {
		text := strings.TrimSpace(m[1])
		if text == "" || !strings.Contains(long, text) {
			continue
		}
		if len(text) >= len(strings.TrimSpace(long)) {
			t.Fatalf("recommendation was not wrapped: %q", text)
		}
		lines++
	}
	if lines < 2 {
		t.Fatalf("expected recommendation to wrap over several lines, got %d", lines)
	}
}

func TestExport_ManyRowsBreakPages(t *testing.T) {
	exp := NewExporter(WithClock(fixedClock), WithCompression(false))
	res := result.Result{HasColorData: true}
	for i := 0; i < 60; i++ {
		res.Colors = append(res.Colors, result.ColorShare{Name: "Green", Value: float64(i)})
	}

	var buf bytes.Buffer
	if err := exp.Export(context.Background(), &buf, res, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	if n := strings.Count(buf.String(), "/Type /Page\n"); n < 2 {
		t.Fatalf("expected more than one page, got %d", n)
	}
}

func TestExport_InvalidPreviewFails(t *testing.T) {
	exp := NewExporter(WithClock(fixedClock))

	var buf bytes.Buffer
	err := exp.Export(context.Background(), &buf, sampleResult(), &Image{Type: "JPG", Data: []byte("not a jpeg")})
	if err == nil {
		t.Fatal("expected error for corrupt preview")
	}
}

func TestLoader_LoadsOnce(t *testing.T) {
	var loads int32
	l := newLoader(func() (*engine, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(10 * time.Millisecond)
		return &engine{translate: func(s string) string { return s }}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.acquire(context.Background()); err != nil {
				t.Errorf("acquire: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected one load, got %d", got)
	}
}

func TestLoader_SharesFailure(t *testing.T) {
	boom := errors.New("backend unavailable")
	var loads int32
	l := newLoader(func() (*engine, error) {
		atomic.AddInt32(&loads, 1)
		return nil, boom
	})

	for i := 0; i < 3; i++ {
		if _, err := l.acquire(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected %v, got %v", boom, err)
		}
	}
	if atomic.LoadInt32(&loads) != 1 {
		t.Fatalf("failed load must not be retried, got %d loads", loads)
	}
}

func TestLoader_RespectsContext(t *testing.T) {
	release := make(chan struct{})
	l := newLoader(func() (*engine, error) {
		<-release
		return &engine{}, nil
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoader_WaitersDoNotSpawnGoroutines(t *testing.T) {
	release := make(chan struct{})
	var loads int32
	l := newLoader(func() (*engine, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return &engine{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	before := runtime.NumGoroutine()
	for i := 0; i < 200; i++ {
		if _, err := l.acquire(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
	if delta := runtime.NumGoroutine() - before; delta > 5 {
		t.Fatalf("expected no goroutine per waiter, got %d more", delta)
	}

	close(release)
	eng, err := l.acquire(context.Background())
	if err != nil || eng == nil {
		t.Fatalf("unexpected result %v, %v", eng, err)
	}
	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected one load, got %d", got)
	}
}
