// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads gateway credentials from a directory of plain-text
// files. Each file becomes one HTTP header on every service call: the
// filename is the header name (e.g. "X-Api-Key") and the trimmed file
// contents are the value. This keeps credentials out of xls2pdf.yaml, which
// is usually committed alongside the workbooks.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadHeaders reads all files in dir and returns a header-name to value map.
// A missing directory is not an error; LoadHeaders returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func LoadHeaders(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	headers := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			headers[name] = value
		}
	}

	return headers, nil
}

// Merge overlays extra headers onto base without mutating either map.
// Values in extra win on name collisions.
func Merge(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
