package page

import "errors"

// State is the position of a Session in the upload/submit lifecycle.
type State int

const (
	Idle State = iota
	FileSelected
	Submitting
	ResultReady
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileSelected:
		return "file-selected"
	case Submitting:
		return "submitting"
	case ResultReady:
		return "result-ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return s == Idle || s == FileSelected
}

var (
	ErrSubmitInFlight = errors.New("an analysis request is already in flight")
	ErrSubmitDisabled = errors.New("submission is disabled until the current result is cleared")
	ErrNoResult       = errors.New("no analysis result to export")
	ErrReportBusy     = errors.New("report generation already in progress")
)
