package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zenload/zenload/internal/model"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "List the available video and audio options for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  fetchRun,
}

func fetchRun(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := app.service.Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	printSummary(summary)
	return nil
}

func printSummary(summary *model.VideoSummary) {
	fmt.Printf("%s\n", summary.Title)
	if summary.DurationSec > 0 {
		fmt.Printf("duration: %ds\n", summary.DurationSec)
	}
	if len(summary.Options) == 0 {
		fmt.Println("no downloadable streams found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tKIND\tLABEL\tCONTAINER\tSIZE")
	for _, opt := range summary.Options {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			opt.FormatID, opt.Kind, opt.DisplayLabel, opt.Container, opt.SizeLabel)
	}
	w.Flush()
}
