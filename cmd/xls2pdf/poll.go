package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xls2pdf/internal/convert"
	"github.com/pdiddy/xls2pdf/internal/jobstore"
)

var pollCmd = &cobra.Command{
	Use:   "poll <result-identifier>",
	Short: "Resume polling a submitted conversion",
	Long: `Poll retrieves the PDF for a result identifier issued by an earlier
submit, without resubmitting the workbook. The output path comes from the
job history when the identifier was submitted on this machine; otherwise
pass --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runPoll,
}

func init() {
	addServiceFlags(pollCmd)
	pollCmd.Flags().String("output", "", "output PDF path (default: from job history)")
	pollCmd.Flags().Duration("deadline", 0, "overall wall-clock deadline for the whole run")

	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	resultID := args[0]

	cfg := buildClientConfig(cmd)
	if cfg.Service.GetURL == "" {
		return fmt.Errorf("poll requires a poll URL (--get-url or service.get_url)")
	}

	output, _ := cmd.Flags().GetString("output")
	rec, closeRec := openRecorder(cfg.JobsDir)
	defer closeRec()

	if output == "" {
		store, ok := rec.(*jobstore.Store)
		if !ok {
			return fmt.Errorf("no job history available; pass --output")
		}
		job, err := store.Get(resultID)
		if err != nil {
			return fmt.Errorf("output path unknown (%v); pass --output", err)
		}
		output = job.OutputPath
		if output == "" {
			return fmt.Errorf("job history has no output path for %s; pass --output", resultID)
		}
	}

	ctx, cancel := runContext(cmd)
	defer cancel()

	client := &http.Client{Timeout: cfg.Timeout}
	_, err := convert.FetchResult(ctx, client, cfg, resultID, output, rec, os.Stdout)
	return err
}
