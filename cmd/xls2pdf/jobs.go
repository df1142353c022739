package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/xls2pdf/internal/convert"
	"github.com/pdiddy/xls2pdf/internal/jobstore"
	"github.com/pdiddy/xls2pdf/pkg/types"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recorded conversion jobs",
	Long: `Jobs lists the conversion history recorded by submit, convert, and
poll: result identifiers, statuses, and output paths. Pending jobs can be
resumed with "xls2pdf poll <identifier>".`,
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().String("status", "", "filter by status: submitted, completed, or failed")
	jobsCmd.Flags().String("jobs-dir", "", "job history directory (default jobs)")

	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("jobs-dir")
	if dir == "" {
		dir = defaultJobsDir
	}
	status, _ := cmd.Flags().GetString("status")

	store, err := jobstore.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	jobs, err := store.List(types.JobStatus(status))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("no jobs recorded")
		return nil
	}

	for _, job := range jobs {
		line := fmt.Sprintf("%-10s %s  %s", job.Status, job.ResultID, job.Filename)
		if job.OutputPath != "" {
			line += " -> " + job.OutputPath
		}
		if job.Error != "" {
			line += fmt.Sprintf(" (%s)", job.Error)
		}
		fmt.Println(line)
	}
	return nil
}

// openRecorder opens the job history store. History is advisory: an open
// failure disables recording with a warning instead of aborting the
// conversion.
func openRecorder(dir string) (convert.Recorder, func()) {
	store, err := jobstore.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: job history disabled: %v\n", err)
		return nil, func() {}
	}
	return store, func() { store.Close() }
}
