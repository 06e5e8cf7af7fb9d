// Package upload accepts product images and keeps them in a Store.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

var (
	ErrTooLarge    = apperr.New(apperr.PayloadTooLarge, "file too large")
	ErrUnsupported = apperr.New(apperr.UnsupportedMediaType, "unsupported file type")
)

// extension -> content type
var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Image is an accepted upload, fully read into memory.
type Image struct {
	Ext         string
	ContentType string
	Data        []byte
}

// CheckImage accepts fh only when it fits under maxBytes and its extension,
// declared content type and sniffed content all name the same image format.
func CheckImage(fh *multipart.FileHeader, maxBytes int64) (Image, error) {
	if fh.Size > maxBytes {
		return Image{}, ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := imageTypes[ext]
	if !ok {
		return Image{}, ErrUnsupported
	}
	if declared := normalizeType(fh.Header.Get("Content-Type")); declared != want {
		return Image{}, ErrUnsupported
	}

	f, err := fh.Open()
	if err != nil {
		return Image{}, fmt.Errorf("upload: open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// read one byte past the limit so a lying Size header is still caught
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("upload: read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > maxBytes {
		return Image{}, ErrTooLarge
	}
	if !mimetype.Detect(data).Is(want) {
		return Image{}, ErrUnsupported
	}

	return Image{Ext: ext, ContentType: want, Data: data}, nil
}

func normalizeType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "image/jpg" || ct == "image/pjpeg" {
		return "image/jpeg"
	}
	return ct
}
