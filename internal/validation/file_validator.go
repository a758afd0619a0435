// Package validation checks command inputs before a run touches them.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "htscreen/internal/errors"
)

// FileValidator checks input and output locations of the screen command
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputDirectory checks that dir exists and holds at least one file
// with one of exts. An empty export directory is a configuration mistake,
// not an empty run.
func (v *FileValidator) ValidateInputDirectory(dir string, exts ...string) error {
	info, err := os.Stat(dir)
	if err != nil {
		v.logger.Error("Input directory not accessible",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewConfigError(fmt.Sprintf("input directory %s", dir), err)
	}
	if !info.IsDir() {
		return apperrors.NewConfigError(fmt.Sprintf("%s is not a directory", dir), nil)
	}

	count, err := v.CountFiles(dir, exts...)
	if err != nil {
		return err
	}
	if count == 0 {
		v.logger.Warn("No input files found",
			slog.String("directory", dir),
			slog.String("extensions", strings.Join(exts, ",")))
		return apperrors.NewConfigError(
			fmt.Sprintf("no %s files in %s", strings.Join(exts, "/"), dir), nil)
	}

	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", count))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// ValidateFile checks that path is a readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("file %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewConfigError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidatePlateMap checks a plate map file: readable, .csv or .xlsx, and
// not an Excel lock file.
func (v *FileValidator) ValidatePlateMap(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return apperrors.NewConfigError(
			fmt.Sprintf("plate map %s must be .csv or .xlsx (got %q)", path, ext), nil)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewConfigError(fmt.Sprintf("plate map %s is an Excel lock file", path), nil)
	}
	return nil
}

// CountFiles counts regular files in dir whose extension is one of exts
// (case-insensitive). No extensions counts every file.
func (v *FileValidator) CountFiles(dir string, exts ...string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperrors.NewConfigError(fmt.Sprintf("failed to list %s", dir), err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if len(exts) == 0 || hasExtension(entry.Name(), exts) {
			count++
		}
	}
	return count, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
