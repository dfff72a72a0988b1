package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/perf-review-sync/internal/app"
	"github.com/lueurxax/perf-review-sync/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}

		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// setup loads configuration and builds the application for one command.
func setup(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("headless") {
		headless, _ := cmd.Flags().GetBool("headless") //nolint:errcheck // flag is registered on this command
		cfg.BrowserHeadless = headless
	}

	logger := newLogger(cfg.AppEnv)

	return app.New(cfg, &logger), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "perf-sync",
		Short:         "Performance review report automation",
		Long:          "Downloads performance cycle reports, uploads them to the review spreadsheet and writes manager blurbs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newDownloadCmd(),
		newBlurbsCmd(),
		newSummaryCmd(),
		newAnalyzeCmd(),
		newVerifyCmd(),
		newHandleCmd(),
		newServeCmd(),
	)

	return root
}

func newDownloadCmd() *cobra.Command {
	var opts app.DownloadOptions

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a cycle report and upload it to the source tab",
		Example: `  perf-sync download --report "Q2&Q3 Check In"
  perf-sync download --report "Annual Review 2024" --auto --headless`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := setup(cmd)
			if err != nil {
				return err
			}

			res, err := application.RunDownload(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d rows from %q\n", res.Rows, res.Report)

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Report, "report", "r", "", "report name to search for")
	cmd.Flags().BoolVar(&opts.Auto, "auto", false, "never prompt; only download a unique match")
	cmd.Flags().Bool("headless", true, "run the browser without a window")
	_ = cmd.MarkFlagRequired("report") //nolint:errcheck // flag is registered above

	return cmd
}

func newBlurbsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blurbs",
		Short: "Generate manager blurbs into the hidden blurb tab",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := setup(cmd)
			if err != nil {
				return err
			}

			rep, err := application.RunBlurbs(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d blurbs: %d model, %d fallback, %d manual review, %d without feedback\n",
				rep.Rows, rep.Model, rep.Fallback, rep.Manual, rep.NoFeedback)

			return nil
		},
	}
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Write the rating distribution to the summary tab",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := setup(cmd)
			if err != nil {
				return err
			}

			s, err := application.RunSummary(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Summary written: %d rating categories from %d ratings\n", len(s.Rows), s.Total)

			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Explain which employees ended up in manual review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := setup(cmd)
			if err != nil {
				return err
			}

			_, err = application.RunAnalyze(cmd.Context(), cmd.OutOrStdout())

			return err
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the spreadsheet has every expected tab",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := setup(cmd)
			if err != nil {
				return err
			}

			res, err := application.RunVerify(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if !res.OK() {
				return fmt.Errorf("%d expected tabs missing", len(res.Missing))
			}

			return nil
		},
	}
}

func newHandleCmd() *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "handle",
		Short: "Run one download from a serverless event document",
		Example: `  echo '{"report_name": "Q2&Q3 Check In"}' | perf-sync handle --event -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readEvent(cmd.InOrStdin(), eventPath)
			if err != nil {
				return err
			}

			application, err := setup(cmd)
			if err != nil {
				return err
			}

			resp := application.Handle(cmd.Context(), raw)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}

			if resp.StatusCode >= 300 {
				return fmt.Errorf("handler returned status %d", resp.StatusCode)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "event JSON file, - for stdin")

	return cmd
}

func readEvent(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading event from stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event: %w", err)
	}

	return data, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web control surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := setup(cmd)
			if err != nil {
				return err
			}

			return application.RunServe(cmd.Context())
		},
	}
}
