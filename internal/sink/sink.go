// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink persists converted PDFs and their conversion receipts.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/xls2pdf/pkg/types"
)

// ErrWrite means the output could not be persisted.
var ErrWrite = errors.New("writing conversion output failed")

// DefaultOutputPath derives the output location from the source file: a
// sibling with the same stem and a .pdf extension, or converted.pdf when
// the stem is empty.
func DefaultOutputPath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "converted"
	}
	return filepath.Join(dir, stem+".pdf")
}

// Write stores data at path via a temporary file renamed into place, so a
// failed write never leaves a partial PDF at the destination.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %v", ErrWrite, dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".xls2pdf-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrWrite, err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWrite, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWrite, closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// WriteReceipt writes the conversion receipt as YAML next to the output PDF
// and returns the receipt path.
func WriteReceipt(r types.Receipt) (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling receipt: %v", ErrWrite, err)
	}

	out := r.OutputPath
	path := strings.TrimSuffix(out, filepath.Ext(out)) + ".receipt.yaml"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return path, nil
}
