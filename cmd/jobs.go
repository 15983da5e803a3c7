package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List known download jobs, including ones from previous runs",
	Args:  cobra.NoArgs,
	RunE:  jobsRun,
}

func jobsRun(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	list, err := app.store.List()
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("no jobs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSTATE\tPROGRESS\tTITLE\tERROR")
	for _, job := range list {
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\n",
			job.JobKey, job.State, job.ProgressPercent, job.GetDisplayTitle(), job.LastError)
	}
	return w.Flush()
}
