package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/xls2pdf/pkg/types"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"simple", "report.xlsx", "report.pdf"},
		{"nested", filepath.Join("data", "q3", "budget.xlsx"), filepath.Join("data", "q3", "budget.pdf")},
		{"no extension", "workbook", "workbook.pdf"},
		{"empty stem", ".xlsx", "converted.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultOutputPath(tt.source))
		})
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")

	require.NoError(t, Write(path, []byte("%PDF-1.7")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "out.pdf")
	require.NoError(t, Write(path, []byte("%PDF")))
	assert.FileExists(t, path)
}

func TestWrite_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, Write(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWrite_FailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	// A directory at the destination path makes the rename fail.
	path := filepath.Join(dir, "occupied")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := Write(path, []byte("%PDF"))
	assert.ErrorIs(t, err, ErrWrite)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1, "temp file should be cleaned up on failure")
}

func TestWriteReceipt(t *testing.T) {
	dir := t.TempDir()
	r := types.Receipt{
		SourcePath:       filepath.Join(dir, "report.xlsx"),
		OutputPath:       filepath.Join(dir, "report.pdf"),
		ResultID:         "deadbeef",
		Attempts:         3,
		ConversionSource: "s3://bucket/deadbeef/report.xlsx",
		ConversionTarget: "s3://bucket/deadbeef/report.pdf",
		CompletedAt:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	path, err := WriteReceipt(r)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "report.receipt.yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got types.Receipt
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, r, got)
}
