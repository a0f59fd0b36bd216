package imaging

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
)

// DefaultMaxBytes is the upload limit when none is configured
const DefaultMaxBytes int64 = 10 << 20

const mediaSVG = "image/svg+xml"

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	mediaSVG:     true,
}

// FileLoader reads image files from disk and turns them into data URIs
type FileLoader struct {
	maxBytes int64
}

// NewFileLoader creates a loader; maxBytes <= 0 uses DefaultMaxBytes
func NewFileLoader(maxBytes int64) *FileLoader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileLoader{maxBytes: maxBytes}
}

var _ ports.ImageLoader = (*FileLoader)(nil)

// Load validates path and returns its data URI and base name
func (l *FileLoader) Load(ctx context.Context, path string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidImage, path)
	}
	if info.Size() > l.maxBytes {
		return "", "", fmt.Errorf("%w: %s is %s, limit is %s",
			domain.ErrInvalidImage, filepath.Base(path), FormatBytes(info.Size()), FormatBytes(l.maxBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read image: %w", err)
	}

	mediaType := DetectMediaType(path, data)
	if !allowedTypes[mediaType] {
		return "", "", fmt.Errorf("%w: %s (%s)", domain.ErrInvalidImage, filepath.Base(path), mediaType)
	}

	return EncodeDataURI(mediaType, data), filepath.Base(path), nil
}

// DetectMediaType sniffs the content and falls back to the extension for
// SVG, which sniffs as XML or plain text
func DetectMediaType(path string, data []byte) string {
	mediaType, _, _ := strings.Cut(http.DetectContentType(data), ";")

	if strings.HasPrefix(mediaType, "image/") && mediaType != mediaSVG {
		return mediaType
	}
	if strings.EqualFold(filepath.Ext(path), ".svg") && bytes.Contains(data, []byte("<svg")) {
		return mediaSVG
	}
	return mediaType
}

// FormatBytes renders a byte count as "1.5 MB"
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}

	v := float64(n) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + units[i]
}
