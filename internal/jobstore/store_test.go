// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/xls2pdf/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJobLifecycle(t *testing.T) {
	s := openStore(t)

	submitted := types.Job{
		ResultID:    "aaaa",
		Filename:    "report.xlsx",
		SourcePath:  "/data/report.xlsx",
		OutputPath:  "/data/report.pdf",
		Status:      types.JobSubmitted,
		SubmittedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.JobSubmitted(submitted))

	got, err := s.Get("aaaa")
	require.NoError(t, err)
	assert.Equal(t, types.JobSubmitted, got.Status)
	assert.Equal(t, "report.xlsx", got.Filename)
	assert.Equal(t, submitted.SubmittedAt, got.SubmittedAt)
	assert.True(t, got.CompletedAt.IsZero())

	finished := submitted
	finished.Status = types.JobCompleted
	finished.CompletedAt = time.Date(2026, 2, 1, 10, 5, 0, 0, time.UTC)
	require.NoError(t, s.JobFinished(finished))

	got, err = s.Get("aaaa")
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, got.Status)
	assert.Equal(t, finished.CompletedAt, got.CompletedAt)
	// The submit timestamp survives the completion update.
	assert.Equal(t, submitted.SubmittedAt, got.SubmittedAt)
}

func TestJobSubmitted_Resubmit(t *testing.T) {
	s := openStore(t)

	job := types.Job{
		ResultID:    "aaaa",
		Filename:    "report.xlsx",
		Status:      types.JobFailed,
		Error:       "transport failure",
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, s.JobSubmitted(job))
	require.NoError(t, s.JobFinished(job))

	// Resubmitting the same workbook reuses the identifier and resets state.
	job.Status = types.JobSubmitted
	job.Error = ""
	require.NoError(t, s.JobSubmitted(job))

	got, err := s.Get("aaaa")
	require.NoError(t, err)
	assert.Equal(t, types.JobSubmitted, got.Status)
	assert.Empty(t, got.Error)
	assert.True(t, got.CompletedAt.IsZero())
}

func TestJobFinished_WithoutPriorRecord(t *testing.T) {
	s := openStore(t)

	// A resumed poll on a fresh machine has no submit record.
	job := types.Job{
		ResultID:    "bbbb",
		OutputPath:  "/out/resumed.pdf",
		Status:      types.JobCompleted,
		CompletedAt: time.Now().UTC(),
	}
	require.NoError(t, s.JobFinished(job))

	got, err := s.Get("bbbb")
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, got.Status)
	assert.Equal(t, "/out/resumed.pdf", got.OutputPath)
}

func TestGet_NotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i, job := range []types.Job{
		{ResultID: "a1", Status: types.JobSubmitted},
		{ResultID: "a2", Status: types.JobCompleted},
		{ResultID: "a3", Status: types.JobSubmitted},
	} {
		job.SubmittedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.JobSubmitted(job))
	}

	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a3", all[0].ResultID, "newest first")

	pending, err := s.List(types.JobSubmitted)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
