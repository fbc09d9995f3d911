package filestorage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// MaxProfilePictureSize is the upload size limit for profile pictures.
const MaxProfilePictureSize = 5 << 20 // 5 MB

// allowedImageExtensions maps accepted file extensions to the MIME types
// the uploaded content must actually carry.
var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// FileStorage defines the interface for profile picture storage operations
type FileStorage interface {
	// SaveProfilePicture validates and stores an uploaded image, returning
	// the relative path to record in the database.
	SaveProfilePicture(fileHeader *multipart.FileHeader) (string, error)

	// DeleteFile removes a stored file. Deleting a missing file is not an error.
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a stored file path
	GetFullPath(filePath string) string
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// SaveProfilePicture validates the uploaded file against the size limit and
// image allow-list, then writes it under the storage root with a unique name.
// The returned path is relative (e.g. "uploads/profile-cv-1712345678901-a1b2c3d4.jpg").
func (ls *LocalStorage) SaveProfilePicture(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", nil // No file uploaded
	}

	if fileHeader.Size > MaxProfilePictureSize {
		return "", apperrors.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	wantMime, ok := allowedImageExtensions[ext]
	if !ok {
		return "", apperrors.ErrUnsupportedFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Sniff the actual content type; the extension alone is not trusted.
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	if mtype.String() != wantMime {
		logger.Warn().
			Str("filename", fileHeader.Filename).
			Str("detected", mtype.String()).
			Msg("Uploaded file content does not match its extension")
		return "", apperrors.ErrUnsupportedFile
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	uniqueFilename := buildFilename(fileHeader.Filename, ext)
	dstPath := filepath.Join(ls.basePath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	accessiblePath := "uploads/" + uniqueFilename
	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", uniqueFilename).
		Msg("Profile picture saved")
	return accessiblePath, nil
}

// buildFilename derives a collision-safe storage name from the original
// upload name, a millisecond timestamp and a random suffix.
func buildFilename(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = sanitizeBase(base)
	if base == "" {
		base = "upload"
	}

	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)

	return fmt.Sprintf("profile-%s-%d-%s%s", base, time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
}

// sanitizeBase keeps only characters that are safe in a filename.
func sanitizeBase(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 60 {
		out = out[:60]
	}
	return out
}

// DeleteFile removes a file from the storage filesystem.
// It accepts the path as stored in the database (e.g. "uploads/filename.jpg").
// Returns nil if deletion succeeds or if the file does not exist.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil // Nothing to delete
	}

	filename := filepath.Base(filePath)
	if filename == "" || filename == "." || filename == "/" || filename == "uploads" {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	physicalPath := filepath.Join(ls.basePath, filename)

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted")
	return nil
}

// GetFullPath returns the full filesystem path for a stored file path.
func (ls *LocalStorage) GetFullPath(filePath string) string {
	filename := filepath.Base(filePath)
	if filename == "" || filename == "." || filename == "/" {
		return ""
	}

	return filepath.Join(ls.basePath, filename)
}
