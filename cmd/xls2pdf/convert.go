package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xls2pdf/internal/convert"
	"github.com/pdiddy/xls2pdf/internal/sink"
)

var convertCmd = &cobra.Command{
	Use:   "convert [workbooks...]",
	Short: "Convert Excel workbooks to PDF",
	Long: `Convert submits workbooks to the conversion service and writes the
rendered PDFs next to the sources (same stem, .pdf extension). The default
asynchronous path submits each workbook and polls its result identifier;
--sync uses the single-call endpoint instead. Sources whose output PDF
already exists are skipped unless --force is given.`,
	RunE: runConvert,
}

func init() {
	addServiceFlags(convertCmd)
	convertCmd.Flags().Bool("sync", false, "use the synchronous single-call endpoint")
	convertCmd.Flags().String("output", "", "output PDF path (single workbook only)")
	convertCmd.Flags().String("target", "", "service-side output location (e.g. an s3:// URI)")
	convertCmd.Flags().String("format", "", "input format (default xlsx)")
	convertCmd.Flags().Duration("deadline", 0, "overall wall-clock deadline for the whole run")
	convertCmd.Flags().Bool("force", false, "convert even when the output PDF already exists")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more workbook files")
	}

	cfg := buildClientConfig(cmd)
	sync, _ := cmd.Flags().GetBool("sync")
	output, _ := cmd.Flags().GetString("output")
	target, _ := cmd.Flags().GetString("target")
	format, _ := cmd.Flags().GetString("format")
	force, _ := cmd.Flags().GetBool("force")

	if output != "" && len(args) > 1 {
		return fmt.Errorf("--output applies to a single workbook, got %d", len(args))
	}
	if sync && cfg.Service.APIURL == "" {
		return fmt.Errorf("synchronous conversion requires an API URL (--api-url or service.api_url)")
	}
	if !sync && (cfg.Service.SubmitURL == "" || cfg.Service.GetURL == "") {
		return fmt.Errorf("asynchronous conversion requires submit and poll URLs (--submit-url/--get-url or service.submit_url/service.get_url)")
	}

	ctx, cancel := runContext(cmd)
	defer cancel()

	client := &http.Client{Timeout: cfg.Timeout}
	opts := convert.Options{
		Target:     target,
		Format:     format,
		OutputPath: output,
		Force:      force,
	}

	if sync {
		for _, src := range args {
			out := output
			if out == "" {
				out = sink.DefaultOutputPath(src)
			}
			if !force {
				if _, err := os.Stat(out); err == nil {
					fmt.Printf("skipped: %s (output already exists)\n", src)
					continue
				}
			}
			if _, err := convert.ConvertSync(ctx, client, cfg, src, opts, os.Stdout); err != nil {
				return fmt.Errorf("converting %s: %w", src, err)
			}
		}
		return nil
	}

	rec, closeRec := openRecorder(cfg.JobsDir)
	defer closeRec()

	if len(args) == 1 {
		_, _, err := convert.ConvertAsync(ctx, client, cfg, args[0], opts, rec, os.Stdout)
		return err
	}

	result := convert.ConvertBatch(ctx, client, cfg, args, opts, rec, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d workbook(s) failed conversion", result.Failed)
	}
	return nil
}

// runContext derives the command context, applying the --deadline flag as a
// wall-clock bound on top of the attempt-count bound.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if deadline, _ := cmd.Flags().GetDuration("deadline"); deadline > 0 {
		return context.WithTimeout(ctx, deadline)
	}
	return context.WithCancel(ctx)
}
