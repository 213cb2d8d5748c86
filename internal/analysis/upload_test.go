package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"leaf.jpg", true},
		{"leaf.JPEG", true},
		{"leaf.png", true},
		{"leaf.gif", false},
		{"leaf", false},
		{"", false},
		{"archive.png.exe", false},
	}
	for _, tt := range tests {
		if got := AllowedFile(tt.name); got != tt.want {
			t.Errorf("AllowedFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSaveUploadedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	path, cleanup, err := SaveUploadedFile(strings.NewReader("pixels"), dir, "Leaf.PNG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Ext(path) != ".png" {
		t.Fatalf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "pixels" {
		t.Fatalf("unexpected content %q, %v", data, err)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected cleanup to remove file, got err=%v", err)
	}
}

func TestSaveUploadedFile_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	a, cleanA, err := SaveUploadedFile(strings.NewReader("a"), dir, "leaf.jpg")
	if err != nil {
		t.Fatal(err)
	}
	defer cleanA()
	b, cleanB, err := SaveUploadedFile(strings.NewReader("b"), dir, "leaf.jpg")
	if err != nil {
		t.Fatal(err)
	}
	defer cleanB()
	if a == b {
		t.Fatal("expected distinct upload paths")
	}
}
