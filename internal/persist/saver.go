// Package persist writes finished captures to disk: decoded and
// re-encoded image files, raw-byte fallbacks, and single-page PDF
// reports.
package persist

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
)

// TimestampPath inserts a timestamp between the file stem and
// extension: captures/shot.png -> captures/shot_20260828_143055.png.
func TimestampPath(template string, now time.Time) string {
	ext := filepath.Ext(template)
	stem := strings.TrimSuffix(template, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
}

// Saver persists image bytes under a timestamped variant of the
// caller's path template. The extension picks the output format:
// .png and .bmp re-encode, .pdf embeds the image into a PDF page, and
// anything the decoder cannot parse falls back to a raw .bmp write —
// a decode failure never loses the capture.
type Saver struct {
	// Now is the clock for the timestamp; nil means time.Now.
	Now func() time.Time
}

// Save writes the image and returns the resolved path.
func (s Saver) Save(data []byte, template string) (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	path := TimestampPath(template, now())

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if err := WritePDF(data, path); err != nil {
			return "", err
		}
	case ".png":
		if err := reencode(data, path, png.Encode); err != nil {
			return rawFallback(data, path)
		}
	case ".bmp":
		if err := reencode(data, path, bmp.Encode); err != nil {
			return rawFallback(data, path)
		}
	default:
		return rawFallback(data, path)
	}

	slog.Info("screenshot saved", "path", path, "bytes", len(data))
	return path, nil
}

// reencode decodes the capture (scopes emit BMP or PNG depending on
// vendor) and writes it in the format the extension asks for.
func reencode(data []byte, path string, encode func(io.Writer, image.Image) error) error {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Debug("image re-encoded", "from", format, "path", path)
	return nil
}

// rawFallback writes the bytes untouched under a .bmp name.
func rawFallback(data []byte, path string) (string, error) {
	ext := filepath.Ext(path)
	rawPath := path
	if !strings.EqualFold(ext, ".bmp") {
		rawPath = strings.TrimSuffix(path, ext) + ".bmp"
	}
	if err := os.WriteFile(rawPath, data, 0644); err != nil {
		return "", fmt.Errorf("write raw image: %w", err)
	}
	slog.Warn("saved raw image bytes without re-encoding", "path", rawPath, "bytes", len(data))
	return rawPath, nil
}
