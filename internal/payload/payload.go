// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package payload builds conversion request bodies from workbook files.
package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFormat is the input format assumed when none is given.
const DefaultFormat = "xlsx"

var (
	// ErrFileNotFound means the source path did not resolve to a readable file.
	ErrFileNotFound = errors.New("workbook file not readable")

	// ErrEmptyFile means the source file had no content.
	ErrEmptyFile = errors.New("workbook content is empty")
)

// ConversionRequest is the JSON body accepted by both the submit and the
// synchronous conversion endpoints.
type ConversionRequest struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Data     string `json:"data"`
	Target   string `json:"target,omitempty"`
}

// Options override the defaults derived from the source file.
type Options struct {
	// Filename overrides the source file's base name.
	Filename string
	// Format overrides the input format (default "xlsx"); lowercased.
	Format string
	// Target is an optional output location understood by the service.
	Target string
}

// New builds a ConversionRequest from raw workbook bytes. It is a pure
// transform: the data is base64-encoded and the filename reduced to its
// base name. An empty workbook is rejected with ErrEmptyFile.
func New(data []byte, opts Options) (*ConversionRequest, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = DefaultFormat
	}

	filename := filepath.Base(opts.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		filename = ""
	}
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if !strings.HasSuffix(strings.ToLower(filename), "."+format) {
		return nil, fmt.Errorf("filename must end with .%s: %q", format, filename)
	}

	return &ConversionRequest{
		Filename: filename,
		Format:   format,
		Data:     base64.StdEncoding.EncodeToString(data),
		Target:   opts.Target,
	}, nil
}

// Encode reads the workbook at sourcePath and builds a ConversionRequest.
// The filename defaults to the source file's base name.
func Encode(sourcePath string, opts Options) (*ConversionRequest, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	if opts.Filename == "" {
		opts.Filename = filepath.Base(sourcePath)
	}
	return New(data, opts)
}
