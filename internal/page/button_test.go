package page

import (
	"errors"
	"testing"
	"time"
)

func manualButton() (*DownloadButton, *func()) {
	b := NewDownloadButton(0)
	var revert func()
	b.afterFunc = func(d time.Duration, f func()) *time.Timer {
		if d != DefaultErrorRevert {
			panic("unexpected revert delay")
		}
		revert = f
		return nil
	}
	return b, &revert
}

func TestDownloadButton_Success(t *testing.T) {
	b, _ := manualButton()
	if b.Label() != "Download Report" || b.Disabled() {
		t.Fatalf("expected ready button, got %q disabled=%v", b.Label(), b.Disabled())
	}
	if !b.Begin() {
		t.Fatal("expected Begin to succeed")
	}
	if b.Label() != "Generating PDF..." || !b.Disabled() {
		t.Fatalf("expected busy button, got %q disabled=%v", b.Label(), b.Disabled())
	}
	if b.Begin() {
		t.Fatal("expected second Begin to fail while busy")
	}
	b.Finish(nil)
	if b.State() != ButtonReady {
		t.Fatalf("expected ready, got %v", b.State())
	}
}

func TestDownloadButton_ErrorReverts(t *testing.T) {
	b, revert := manualButton()
	b.Begin()
	b.Finish(errors.New("boom"))

	if b.State() != ButtonError || b.Label() != "Error" {
		t.Fatalf("expected error state, got %v %q", b.State(), b.Label())
	}
	if b.Disabled() {
		t.Fatal("error state should not disable the button")
	}
	if *revert == nil {
		t.Fatal("expected a revert to be scheduled")
	}
	(*revert)()
	if b.State() != ButtonReady {
		t.Fatalf("expected ready after revert, got %v", b.State())
	}
}

func TestDownloadButton_RevertDoesNotClobberNewRun(t *testing.T) {
	b, revert := manualButton()
	b.Begin()
	b.Finish(errors.New("boom"))
	if !b.Begin() {
		t.Fatal("expected Begin to succeed from error state")
	}
	(*revert)()
	if b.State() != ButtonBusy {
		t.Fatalf("expected busy, got %v", b.State())
	}
}

func TestDownloadButton_RealTimer(t *testing.T) {
	b := NewDownloadButton(10 * time.Millisecond)
	b.Begin()
	b.Finish(errors.New("boom"))

	deadline := time.Now().Add(2 * time.Second)
	for b.State() != ButtonReady {
		if time.Now().After(deadline) {
			t.Fatal("button never reverted to ready")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
