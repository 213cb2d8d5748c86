package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad", nil), http.StatusBadRequest},
		{"not found", NewNotFound("missing", nil), http.StatusNotFound},
		{"too large", NewTooLarge("big", nil), http.StatusRequestEntityTooLarge},
		{"transport", NewTransport("down", nil), http.StatusBadGateway},
		{"application", NewApplication("no leaf"), http.StatusOK},
		{"wrapped validation", fmt.Errorf("ctx: %w", NewValidation("bad", nil)), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage_HidesCause(t *testing.T) {
	err := NewProcessing("analysis failed", errors.New("disk full"))
	if got := Message(err); got != "analysis failed" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := err.Error(); got != "analysis failed: disk full" {
		t.Fatalf("unexpected Error() %q", got)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Fatalf("unexpected plain message %q", got)
	}
}

func TestWrap_KeepsType(t *testing.T) {
	inner := NewNotFound("demo image", nil)
	err := Wrap(inner, "analyze demo", ErrorTypeProcessing)
	if !IsNotFound(err) {
		t.Fatalf("expected not found type, got %q", TypeOf(err))
	}
	if Message(err) != "analyze demo: demo image" {
		t.Fatalf("unexpected message %q", Message(err))
	}

	plain := Wrap(errors.New("io"), "save upload", ErrorTypeProcessing)
	if TypeOf(plain) != ErrorTypeProcessing {
		t.Fatalf("expected processing type, got %q", TypeOf(plain))
	}
	if Wrap(nil, "x", ErrorTypeProcessing) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := NewTransport("request failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find cause")
	}
	if err.Code != "TRANSPORT_ERROR" {
		t.Fatalf("unexpected code %s", err.Code)
	}
}
