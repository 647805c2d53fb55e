// Package emit names and writes generated documents.
package emit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MonthRef identifies one calendar month.
type MonthRef struct {
	Year  int
	Month time.Month
}

// Filename builds the document filename. Single month documents become
// "calendar_2024_04_20240410.pdf"; multi-month ranges become
// "calendar_202404-202406_20240410.pdf". The timestamp is the generation
// date, not an appointment date.
func Filename(first, last MonthRef, now time.Time, ext string) string {
	stamp := now.Format("20060102")
	if first == last {
		return fmt.Sprintf("calendar_%d_%02d_%s.%s", first.Year, int(first.Month), stamp, ext)
	}
	return fmt.Sprintf("calendar_%d%02d-%d%02d_%s.%s",
		first.Year, int(first.Month), last.Year, int(last.Month), stamp, ext)
}

// Save writes the blob into dir under name and returns the full path.
// The write is atomic: temp file in the same directory, then rename.
func Save(dir, name string, blob []byte) (string, error) {
	if name == "" {
		return "", errors.New("emit: empty filename")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".calprint-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", err
	}
	return path, nil
}
