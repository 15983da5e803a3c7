package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zenload/zenload/internal/model"
)

var (
	flagFormat string
	flagAudio  bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a URL and follow its progress until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE:  downloadRun,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Format ID to download (default: best listed video)")
	downloadCmd.Flags().BoolVarP(&flagAudio, "audio", "a", false, "Download the best listed audio option")
}

func downloadRun(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := args[0]

	summary, err := app.service.Fetch(ctx, url)
	if err != nil {
		return err
	}

	choice, err := chooseOption(summary)
	if err != nil {
		return err
	}

	// Terminal transitions arrive on the update callback; buffered so the
	// worker never blocks on a slow terminal.
	updates := make(chan *model.DownloadJob, 64)
	app.service.SetUpdateCallback(func(job *model.DownloadJob) {
		select {
		case updates <- job:
		default:
		}
	})

	key, err := app.service.Submit(url, choice, summary.Title)
	if err != nil {
		return err
	}

	fmt.Printf("downloading %q (%s %s) as job %s\n", summary.Title, choice.Kind, choice.DisplayLabel, key)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\ninterrupted, cancelling")
			return app.service.Cancel(key)
		case job := <-updates:
			if job.JobKey != key {
				continue
			}
			if job.State.IsTerminal() {
				fmt.Println()
				return reportResult(job)
			}
			if job.State == model.JobStateRunning {
				fmt.Printf("\r%3d%%  ETA %s  attempt %d", job.ProgressPercent, job.GetETAString(), job.Attempt)
			}
		}
	}
}

// chooseOption picks the option to download: an explicit --format match,
// otherwise the first audio option with --audio, otherwise the first video
// option.
func chooseOption(summary *model.VideoSummary) (model.MediaOption, error) {
	if flagFormat != "" {
		for _, opt := range summary.Options {
			if opt.FormatID == flagFormat {
				return opt, nil
			}
		}
		return model.MediaOption{}, fmt.Errorf("format %q is not among the listed options", flagFormat)
	}

	want := model.KindVideo
	if flagAudio {
		want = model.KindAudio
	}
	for _, opt := range summary.Options {
		if opt.Kind == want {
			return opt, nil
		}
	}
	return model.MediaOption{}, fmt.Errorf("no %s options available", want)
}

func reportResult(job *model.DownloadJob) error {
	switch job.State {
	case model.JobStateSucceeded:
		fmt.Printf("done: %s\n", job.OutputPath)
		return nil
	case model.JobStateCancelled:
		fmt.Println("cancelled")
		return nil
	default:
		return fmt.Errorf("download failed: %s", job.LastError)
	}
}
