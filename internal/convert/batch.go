// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/xls2pdf/internal/httputil"
	"github.com/pdiddy/xls2pdf/pkg/types"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Results   []*Result
}

// Total returns the total number of source files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any conversions failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts multiple workbooks via the asynchronous path,
// printing per-file status and returning a summary. It continues after
// individual failures and applies a delay between consecutive submissions.
// Each file is one isolated job; output paths are always derived from the
// source, so per-file Options.OutputPath is ignored here.
func ConvertBatch(ctx context.Context, client *http.Client, cfg types.ClientConfig, sources []string, opts Options, rec Recorder, w io.Writer) BatchResult {
	var result BatchResult
	for i, src := range sources {
		if i > 0 && cfg.SubmitDelay > 0 {
			if err := httputil.Sleep(ctx, cfg.SubmitDelay); err != nil {
				fmt.Fprintf(w, "cancelled: %v\n", err)
				result.Failed += len(sources) - i
				break
			}
		}

		fileOpts := opts
		fileOpts.OutputPath = ""

		res, wasSkipped, err := ConvertAsync(ctx, client, cfg, src, fileOpts, rec, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", src, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Converted++
		}
		result.Results = append(result.Results, res)
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
