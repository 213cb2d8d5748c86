package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AllowedExtensions lists the accepted image types.
var AllowedExtensions = []string{"png", "jpg", "jpeg"}

// Upload rejection messages.
var (
	MsgNoSelection  = "No file selected for uploading"
	MsgBadExtension = "Allowed file types are " + strings.Join(AllowedExtensions, ", ")
)

// AllowedFile reports whether filename carries an accepted extension.
func AllowedFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SaveUploadedFile copies r into dir under a random name that keeps the
// extension of filename. The returned cleanup removes the file.
func SaveUploadedFile(r io.Reader, dir, filename string) (string, func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(dir, uuid.New().String()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return "", nil, fmt.Errorf("create upload file: %w", err)
	}

	cleanup := func() {
		f.Close()
		os.Remove(path)
	}

	if _, err := io.Copy(f, r); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("close upload file: %w", err)
	}

	return path, func() { os.Remove(path) }, nil
}
