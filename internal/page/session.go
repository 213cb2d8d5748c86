package page

import (
	"context"
	"html/template"
	"io"
	"strconv"
	"sync"
	"time"

	"leafscan/internal/apperr"
	"leafscan/internal/logger"
	"leafscan/internal/render"
	"leafscan/internal/report"
	"leafscan/internal/result"
)

// MsgNoFile is shown when Submit runs without a selected file.
const MsgNoFile = "Please select a file first."

// Scroll targets.
const (
	ScrollNone   = ""
	ScrollResult = "result"
	ScrollUpload = "upload"
)

// Analyzer sends an image to the analysis backend and returns its JSON body.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, data []byte, fields map[string]string) ([]byte, error)
}

// ReportExporter writes the PDF report of a result.
type ReportExporter interface {
	Export(ctx context.Context, w io.Writer, res result.Result, preview *report.Image) error
}

// View is a snapshot of what the page displays.
type View struct {
	State        State
	Preview      template.HTML
	HasImage     bool
	DragOver     bool
	Loading      bool
	Result       template.HTML
	Error        string
	ScrollTarget string
	Button       ButtonState
}

// Session holds the state of one analysis page.
type Session struct {
	mu       sync.Mutex
	state    State
	view     View
	file     *selection
	result   *result.Result
	fields   map[string]string
	analyzer Analyzer
	exporter ReportExporter
	button   *DownloadButton
	log      *logger.Logger
}

type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithExporter replaces the default PDF exporter.
func WithExporter(e ReportExporter) SessionOption {
	return func(s *Session) { s.exporter = e }
}

// WithButton replaces the download button.
func WithButton(b *DownloadButton) SessionOption {
	return func(s *Session) { s.button = b }
}

// WithPlots asks the backend for diagnostic plots.
func WithPlots(on bool) SessionOption {
	return func(s *Session) { s.fields["include_plots"] = strconv.FormatBool(on) }
}

// NewSession returns an idle session showing the placeholder preview.
func NewSession(analyzer Analyzer, opts ...SessionOption) *Session {
	s := &Session{
		analyzer: analyzer,
		fields:   map[string]string{},
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = report.NewExporter()
	}
	if s.button == nil {
		s.button = NewDownloadButton(DefaultErrorRevert)
	}
	s.view.Preview = placeholder()
	return s
}

// View returns the current display state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.State = s.state
	v.Button = s.button.State()
	return v
}

// Result returns the displayed analysis, if any.
func (s *Session) Result() (result.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return result.Result{}, false
	}
	return *s.result, true
}

// Button is the "Download Report" control of the displayed result.
func (s *Session) Button() *DownloadButton {
	return s.button
}

// Submit sends the selected file for analysis and renders the outcome.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.CanSubmit() {
		state := s.state
		s.mu.Unlock()
		if state == Submitting {
			return ErrSubmitInFlight
		}
		return ErrSubmitDisabled
	}
	if s.file == nil {
		err := apperr.NewValidation(MsgNoFile, nil)
		s.failLocked(MsgNoFile)
		s.mu.Unlock()
		return err
	}
	file := s.file
	fields := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	s.state = Submitting
	s.view.Loading = true
	s.view.Result = ""
	s.view.Error = ""
	s.view.ScrollTarget = ScrollNone
	s.result = nil
	s.mu.Unlock()

	started := time.Now()
	body, err := s.analyzer.Analyze(ctx, file.name, file.data, fields)
	if err == nil {
		var res result.Result
		res, err = result.Normalize(body)
		if err == nil {
			err = s.show(res)
		}
	}
	if err != nil {
		s.log.Warn("analysis failed", logger.Fields{"file": file.name, "error": err.Error()})
		s.mu.Lock()
		s.failLocked(apperr.Message(err))
		s.mu.Unlock()
		return err
	}
	s.log.Info("analysis rendered", logger.Fields{"file": file.name, "elapsed": time.Since(started).String()})
	return nil
}

func (s *Session) show(res result.Result) error {
	html, err := render.HTML(func(w io.Writer) error {
		return render.Result(w, res, render.Actions{})
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &res
	s.view.Loading = false
	s.view.Result = html
	s.view.ScrollTarget = ScrollResult
	s.state = ResultReady
	s.button.Reset()
	return nil
}

func (s *Session) failLocked(message string) {
	html, err := render.HTML(func(w io.Writer) error {
		return render.Error(w, message, render.Actions{})
	})
	if err != nil {
		html = template.HTML(template.HTMLEscapeString(message))
	}
	s.result = nil
	s.view.Loading = false
	s.view.Error = message
	s.view.Result = html
	s.view.ScrollTarget = ScrollNone
	s.state = Failed
}

// TryAgain clears the error view.
func (s *Session) TryAgain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Failed {
		return
	}
	s.view.Result = ""
	s.view.Error = ""
	s.state = Idle
	if s.file != nil {
		s.state = FileSelected
	}
}

// NewAnalysis drops the file and the displayed result and scrolls back to
// the upload area.
func (s *Session) NewAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrSubmitInFlight
	}
	s.file = nil
	s.result = nil
	s.view = View{Preview: placeholder(), ScrollTarget: ScrollUpload}
	s.state = Idle
	s.button.Reset()
	return nil
}

// DownloadReport writes the PDF report of the displayed result. A failure
// leaves the displayed result as it is.
func (s *Session) DownloadReport(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	if s.state != ResultReady || s.result == nil {
		s.mu.Unlock()
		return ErrNoResult
	}
	res := *s.result
	var preview *report.Image
	if s.file != nil {
		preview = s.file.preview
	}
	s.mu.Unlock()

	if !s.button.Begin() {
		return ErrReportBusy
	}
	err := s.exporter.Export(ctx, w, res, preview)
	s.button.Finish(err)
	if err != nil {
		s.log.Error("report generation failed", logger.Fields{"error": err.Error()})
	}
	return err
}

func placeholder() template.HTML {
	html, err := render.HTML(render.Placeholder)
	if err != nil {
		return ""
	}
	return html
}
