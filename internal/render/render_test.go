package render

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"leafscan/internal/result"
)

func renderResult(t *testing.T, payload string, actions Actions) string {
	t.Helper()
	res, err := result.Normalize([]byte(payload))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var buf bytes.Buffer
	if err := Result(&buf, res, actions); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestResult_DefaultSeverity(t *testing.T) {
	out := renderResult(t, `{"diagnosis": "General Chlorosis"}`, Actions{})
	if !strings.Contains(out, `style="width: 75%"`) {
		t.Fatalf("expected 75%% severity bar:\n%s", out)
	}
	if !strings.Contains(out, "Detection Confidence: 75%") {
		t.Fatalf("expected 75%% confidence:\n%s", out)
	}
	if !strings.Contains(out, `<p class="deficiency-name">General Chlorosis</p>`) {
		t.Fatalf("missing diagnosis:\n%s", out)
	}
}

func TestResult_SectionOrderAndOmission(t *testing.T) {
	out := renderResult(t, `{
		"deficiency": "Nitrogen Deficiency",
		"confidence": 0.9,
		"recommendations": ["Apply urea.", "Water less."],
		"color_data": {"percentages": {"Yellow": 45.2, "Green": 30}},
		"plots": ["AAAA"]
	}`, Actions{})

	order := []string{"Detected Deficiency", "Recommendations", "Color Analysis", "Analysis Plots", "Analysis complete."}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		if idx < 0 {
			t.Fatalf("missing %q:\n%s", marker, out)
		}
		if idx < last {
			t.Fatalf("%q rendered out of order", marker)
		}
		last = idx
	}
	if !strings.Contains(out, `<li style="--i:1">Water less.</li>`) {
		t.Fatalf("missing indexed recommendation:\n%s", out)
	}
	if !strings.Contains(out, "Yellow: 45.20%") || !strings.Contains(out, "Green: 30.00%") {
		t.Fatalf("missing color rows:\n%s", out)
	}
	if !strings.Contains(out, `style="background-color: Yellow"`) {
		t.Fatalf("missing swatch:\n%s", out)
	}

	bare := renderResult(t, `{}`, Actions{})
	for _, marker := range order[:4] {
		if strings.Contains(bare, marker) {
			t.Fatalf("empty result should not render %q", marker)
		}
	}
	if !strings.Contains(bare, `id="download-report"`) || !strings.Contains(bare, `id="new-analysis"`) {
		t.Fatalf("summary block must always render:\n%s", bare)
	}
}

func TestResult_ArrayPlotsUnlabeled(t *testing.T) {
	out := renderResult(t, `{"plots": ["QUFB", "QkJC"]}`, Actions{})
	if n := strings.Count(out, `class="analysis-plot"`); n != 2 {
		t.Fatalf("expected 2 images, got %d", n)
	}
	if strings.Contains(out, "plot-item") {
		t.Fatalf("array plots must be unlabeled:\n%s", out)
	}
	if !strings.Contains(out, `src="data:image/png;base64,QUFB"`) {
		t.Fatalf("missing data url:\n%s", out)
	}
}

func TestResult_MappingPlotsCaptioned(t *testing.T) {
	out := renderResult(t, `{"plots": {"leaf_spot": "QUFB"}}`, Actions{})
	if n := strings.Count(out, `class="analysis-plot"`); n != 1 {
		t.Fatalf("expected 1 image, got %d", n)
	}
	if !strings.Contains(out, "<h4>LEAF SPOT</h4>") {
		t.Fatalf("missing caption:\n%s", out)
	}
}

func TestResult_EscapesPayload(t *testing.T) {
	out := renderResult(t, `{"diagnosis": "<script>alert(1)</script>"}`, Actions{})
	if strings.Contains(out, "<script>") {
		t.Fatalf("diagnosis must be escaped:\n%s", out)
	}
}

func TestResult_ActionLinks(t *testing.T) {
	out := renderResult(t, `{}`, Actions{ReportURL: "/report/abc", NewAnalysisURL: "/"})
	if !strings.Contains(out, `href="/report/abc"`) || !strings.Contains(out, `<a class="action-btn" id="new-analysis" href="/">`) {
		t.Fatalf("expected action links:\n%s", out)
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	if err := Error(&buf, "Server returned 500: Internal Server Error", Actions{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `<p class="error-details">Server returned 500: Internal Server Error</p>`) {
		t.Fatalf("missing message:\n%s", out)
	}
	if !strings.Contains(out, `id="try-again"`) {
		t.Fatalf("missing try again:\n%s", out)
	}
}

func TestPreviewAndPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	if err := Preview(&buf, "data:image/jpeg;base64,/9j/", "leaf.jpg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `src="data:image/jpeg;base64,/9j/"`) || !strings.Contains(buf.String(), "<p>leaf.jpg</p>") {
		t.Fatalf("unexpected preview:\n%s", buf.String())
	}

	placeholder, err := HTML(Placeholder)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(placeholder), "Drag and drop your leaf image") {
		t.Fatalf("unexpected placeholder %s", placeholder)
	}
}

func TestPage(t *testing.T) {
	resultHTML, err := HTML(func(w io.Writer) error { return Error(w, "boom", Actions{TryAgainURL: "/"}) })
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Page(&buf, PageData{Result: resultHTML}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `<div class="error-message">`) {
		t.Fatalf("result fragment must not be escaped:\n%s", out)
	}
	if !strings.Contains(out, `id="loading" class="hidden"`) {
		t.Fatalf("loading indicator should be hidden:\n%s", out)
	}
}
