package filestorage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("profilePicture", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	return req.MultipartForm.File["profilePicture"][0]
}

func TestSaveProfilePicture(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	fh := makeFileHeader(t, "my photo.png", pngHeader)
	path, err := ls.SaveProfilePicture(fh)
	if err != nil {
		t.Fatalf("SaveProfilePicture: %v", err)
	}
	if !strings.HasPrefix(path, "uploads/profile-my_photo-") {
		t.Errorf("unexpected stored path %q", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("stored path %q should keep the .png extension", path)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(path))); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestSaveProfilePictureRejectsExtension(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	fh := makeFileHeader(t, "resume.pdf", []byte("%PDF-1.4"))
	if _, err := ls.SaveProfilePicture(fh); !errors.Is(err, apperrors.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestSaveProfilePictureRejectsMismatchedContent(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	// .png extension but plain text content
	fh := makeFileHeader(t, "fake.png", []byte("definitely not an image"))
	if _, err := ls.SaveProfilePicture(fh); !errors.Is(err, apperrors.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestSaveProfilePictureRejectsOversized(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	fh := makeFileHeader(t, "big.png", pngHeader)
	fh.Size = MaxProfilePictureSize + 1
	if _, err := ls.SaveProfilePicture(fh); !errors.Is(err, apperrors.ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestSaveProfilePictureNilHeader(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	path, err := ls.SaveProfilePicture(nil)
	if err != nil {
		t.Fatalf("SaveProfilePicture(nil): %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path for nil header, got %q", path)
	}
}

func TestDeleteFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	if err := ls.DeleteFile("uploads/does-not-exist.jpg"); err != nil {
		t.Errorf("deleting a missing file should be nil, got %v", err)
	}
	if err := ls.DeleteFile(""); err != nil {
		t.Errorf("deleting an empty path should be nil, got %v", err)
	}

	name := filepath.Join(dir, "profile-x-1-abcd.png")
	if err := os.WriteFile(name, pngHeader, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := ls.DeleteFile("uploads/profile-x-1-abcd.png"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Errorf("file should be gone, stat err = %v", err)
	}
}

func TestSanitizeBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"my photo", "my_photo"},
		{"a/b\\c", "a_b_c"},
		{"UPPER-case_09", "UPPER-case_09"},
	}
	for _, tt := range tests {
		if got := sanitizeBase(tt.in); got != tt.want {
			t.Errorf("sanitizeBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
