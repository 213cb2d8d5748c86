package pkg

import (
	"bytes"
	"testing"
)

func TestPrintJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := PrintJSON(buf, map[string]int{"green": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "{\n  \"green\": 1\n}\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPrintJSON_Unsupported(t *testing.T) {
	if err := PrintJSON(&bytes.Buffer{}, make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}
