package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xls2pdf/internal/convert"
	"github.com/pdiddy/xls2pdf/internal/payload"
	"github.com/pdiddy/xls2pdf/internal/sink"
	"github.com/pdiddy/xls2pdf/pkg/types"
)

var submitCmd = &cobra.Command{
	Use:   "submit [workbooks...]",
	Short: "Submit workbooks without waiting for the PDFs",
	Long: `Submit sends workbooks to the conversion service and prints the result
identifiers without polling. Each identifier is recorded in the job history;
retrieve the PDFs later with "xls2pdf poll <identifier>".`,
	RunE: runSubmit,
}

func init() {
	addServiceFlags(submitCmd)
	submitCmd.Flags().String("target", "", "service-side output location (e.g. an s3:// URI)")
	submitCmd.Flags().String("format", "", "input format (default xlsx)")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more workbook files")
	}

	cfg := buildClientConfig(cmd)
	if cfg.Service.SubmitURL == "" {
		return fmt.Errorf("submit requires a submit URL (--submit-url or service.submit_url)")
	}
	target, _ := cmd.Flags().GetString("target")
	format, _ := cmd.Flags().GetString("format")

	ctx := cmd.Context()
	client := &http.Client{Timeout: cfg.Timeout}
	rec, closeRec := openRecorder(cfg.JobsDir)
	defer closeRec()

	var failed int
	for _, src := range args {
		req, err := payload.Encode(src, payload.Options{Format: format, Target: target})
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", src, err)
			failed++
			continue
		}

		id, err := convert.Submit(ctx, client, cfg, req)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", src, err)
			failed++
			continue
		}

		fmt.Fprintf(os.Stdout, "submitted: %s (result %s)\n", req.Filename, id)
		if rec != nil {
			job := types.Job{
				ResultID:    id,
				Filename:    req.Filename,
				SourcePath:  src,
				OutputPath:  sink.DefaultOutputPath(src),
				Status:      types.JobSubmitted,
				SubmittedAt: time.Now().UTC(),
			}
			if err := rec.JobSubmitted(job); err != nil {
				fmt.Fprintf(os.Stderr, "warning: recording job %s failed: %v\n", id, err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d workbook(s) failed submission", failed)
	}
	return nil
}
