package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/terragrow/storefront/config"
)

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

func NewFileValidator(cfg config.UploadConfig) *FileValidator {
	sizeMB := cfg.MaxUploadSizeMB
	if sizeMB <= 0 {
		sizeMB = 5
	}
	return &FileValidator{
		allowedExt:  csvSet(cfg.AllowedExtensions),
		allowedMime: csvSet(cfg.AllowedMimeTypes),
		maxSize:     int64(sizeMB) << 20,
	}
}

func csvSet(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(strings.ToLower(v)); v != "" {
			out[v] = true
		}
	}
	return out
}

// ValidateFile checks size, extension and the sniffed content type, and
// returns the latter.
func (v *FileValidator) ValidateFile(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("missing file")
	}
	if fh.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("invalid file extension")
	}

	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file header")
	}

	detected := strings.ToLower(http.DetectContentType(buffer[:n]))
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	if !v.allowedMime[detected] {
		return "", fmt.Errorf("invalid file type")
	}
	return detected, nil
}
