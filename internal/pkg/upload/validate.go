package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxAttachmentBytes bounds contribution attachments.
const MaxAttachmentBytes = 25 << 20

var (
	ErrTooLarge        = errors.New("attachment exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported attachment type")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".mov":  true,
	".pdf":  true,
	// Note: SVG is intentionally excluded due to XSS risk without sanitization
}

var allowedMime = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"application/pdf": true,
}

// ValidateAttachment checks size, extension and the first bytes of a
// contribution attachment. Returns the detected mime type or an error.
func ValidateAttachment(filename string, size int64, head []byte) (string, error) {
	if size > MaxAttachmentBytes {
		return "", ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	detected := http.DetectContentType(head)

	// Block scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrUnsupportedType
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrUnsupportedType
	}

	// Some containers (e.g. MOV) may sniff as octet-stream; allow by extension
	if detected == "application/octet-stream" && allowedExt[ext] {
		return detected, nil
	}

	if allowedMime[detected] {
		return detected, nil
	}

	return "", ErrUnsupportedType
}

// AllowedExtension reports whether the filename carries a permitted extension.
func AllowedExtension(filename string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(filename))]
}
