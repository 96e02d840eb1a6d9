// Package imagefile stores generated images on disk, deriving safe,
// collision-free file names from prompt text.
package imagefile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// maxNameLen caps the sanitized portion of a file name.
	maxNameLen = 60

	// fallbackName is used when sanitization consumes the whole name.
	fallbackName = "image"
)

// Files saves image payloads into a single directory.
type Files struct {
	dir    string
	logger *slog.Logger
}

// New creates a Files store rooted at dir.
func New(dir string, logger *slog.Logger) *Files {
	if logger == nil {
		logger = slog.Default()
	}
	return &Files{
		dir:    dir,
		logger: logger.With("component", "imagefile"),
	}
}

// Dir returns the directory files are saved into.
func (f *Files) Dir() string {
	return f.dir
}

// Save writes data to a new PNG file named after derivedName and returns
// the full path. The name carries a timestamp and a short content hash so
// repeated saves never clobber an earlier file.
func (f *Files) Save(data []byte, derivedName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no image data to save")
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	sum := sha256.Sum256(data)
	base := fmt.Sprintf("%s-%s-%s", SanitizeName(derivedName),
		time.Now().Format("20060102-150405"), hex.EncodeToString(sum[:4]))

	path := filepath.Join(f.dir, base+".png")
	for n := 2; ; n++ {
		if _, err := os.Stat(path); err != nil {
			break
		}
		path = filepath.Join(f.dir, fmt.Sprintf("%s-%d.png", base, n))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	f.logger.Debug("image saved", "path", path, "bytes", len(data))
	return path, nil
}

// SanitizeName converts free-form prompt text into a file name component:
// lowercased, runs of non-alphanumerics collapsed to single hyphens, capped
// at maxNameLen bytes.
func SanitizeName(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
		if b.Len() >= maxNameLen {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return fallbackName
	}
	return out
}
