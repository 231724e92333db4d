package mt940

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Dir is the subfolder of the upload folder MT940 files are written to.
const Dir = "mt940"

// FileName builds "{name}_{BANK}_{timestamp}.mt940.txt" from the uploaded
// file's original name with its extension dropped.
func FileName(originalFilename, bankCode string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(originalFilename, "\\", "/"))
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" || base == "." || base == "/" {
		base = "statement"
	}
	return fmt.Sprintf("%s_%s_%s.mt940.txt", base, bankCode, now.UTC().Format("20060102150405"))
}

// WriteFile stores text under uploadFolder/mt940 and returns the path relative
// to uploadFolder, always with forward slashes.
func WriteFile(uploadFolder, originalFilename, bankCode, text string, now time.Time) (string, error) {
	dir := filepath.Join(uploadFolder, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create mt940 folder: %w", err)
	}
	name := FileName(originalFilename, bankCode, now)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write mt940 file: %w", err)
	}
	return path.Join(Dir, name), nil
}
