// Package app wires configuration, clients and processes into the commands
// the binary exposes:
//
//   - Download: sign in, pick a cycle report and upload it to the source tab
//   - Blurbs: write one quality-gated manager blurb per employee
//   - Summary: publish the rating distribution
//   - Analyze: explain blurb outcomes
//   - Verify: compare spreadsheet tabs with the expected layout
//   - Serve: run downloads from the web control surface
//   - Handle: run one download from a serverless event
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/lueurxax/perf-review-sync/internal/core/llm"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
	"github.com/lueurxax/perf-review-sync/internal/ingest/browser"
	"github.com/lueurxax/perf-review-sync/internal/platform/config"
	"github.com/lueurxax/perf-review-sync/internal/platform/observability"
	"github.com/lueurxax/perf-review-sync/internal/process/audit"
	"github.com/lueurxax/perf-review-sync/internal/process/automation"
	"github.com/lueurxax/perf-review-sync/internal/process/blurb"
	"github.com/lueurxax/perf-review-sync/internal/process/blurbs"
	"github.com/lueurxax/perf-review-sync/internal/process/ratings"
	"github.com/lueurxax/perf-review-sync/internal/process/verify"
	"github.com/lueurxax/perf-review-sync/internal/web"
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
	model  *llm.Lazy

	in  io.Reader
	out io.Writer

	// download is swapped in tests to avoid a browser.
	download func(ctx context.Context, req automation.Request, chooser automation.Chooser) (automation.Result, error)
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	a := &App{
		cfg:    cfg,
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
	}

	a.model = llm.NewLazy(func() (llm.Client, error) {
		return llm.New(cfg, logger), nil
	})
	a.download = a.runDownload

	return a
}

// DownloadOptions controls one download from the command line.
type DownloadOptions struct {
	Report string
	// Auto refuses to prompt: only a unique match is downloaded.
	Auto bool
}

// RunDownload downloads the report matching opts.Report and uploads it.
func (a *App) RunDownload(ctx context.Context, opts DownloadOptions) (automation.Result, error) {
	var chooser automation.Chooser = automation.NewTerminalChooser(a.in, a.out)
	if opts.Auto {
		chooser = automation.AutoChooser{}
	}

	return a.download(ctx, automation.Request{Query: opts.Report, Credentials: a.credentials()}, chooser)
}

func (a *App) runDownload(ctx context.Context, req automation.Request, chooser automation.Chooser) (automation.Result, error) {
	runner, err := a.newRunner(ctx, chooser)
	if err != nil {
		return automation.Result{}, err
	}

	return runner.Run(ctx, req, nil)
}

func (a *App) newRunner(ctx context.Context, chooser automation.Chooser) (*automation.Runner, error) {
	client, err := a.sheetsClient(ctx)
	if err != nil {
		return nil, err
	}

	return automation.NewRunner(automation.Options{
		Open:        a.openBrowser,
		Sheets:      client,
		Chooser:     chooser,
		SourceSheet: a.cfg.SourceSheet,
		Logger:      a.logger,
	}), nil
}

func (a *App) openBrowser(ctx context.Context) (automation.Browser, error) {
	s, err := browser.Launch(ctx, browser.Options{
		Bin:           a.cfg.BrowserBin,
		Headless:      a.cfg.BrowserHeadless,
		Timeout:       a.cfg.BrowserTimeout,
		LoginURL:      a.cfg.LoginURL,
		CyclesURL:     a.cfg.CyclesURL,
		DownloadDir:   a.cfg.DownloadDir,
		ScreenshotDir: a.cfg.ScreenshotDir,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (a *App) credentials() automation.Credentials {
	return automation.Credentials{Email: a.cfg.HiBobEmail, Password: a.cfg.HiBobPassword}
}

func (a *App) sheetsClient(ctx context.Context) (*sheets.Client, error) {
	creds, err := a.cfg.ServiceAccountCredentials()
	if err != nil {
		return nil, err
	}

	client, err := sheets.New(ctx, creds, a.cfg.SpreadsheetID, a.cfg.SheetsRPS, a.logger)
	if err != nil {
		return nil, fmt.Errorf("sheets client init: %w", err)
	}

	return client, nil
}

// RunBlurbs regenerates the blurb tab.
func (a *App) RunBlurbs(ctx context.Context) (blurbs.Report, error) {
	client, err := a.sheetsClient(ctx)
	if err != nil {
		return blurbs.Report{}, err
	}

	gen := blurbs.NewGenerator(blurbs.Options{
		Store:            client,
		Summarizer:       a.model,
		Gate:             a.blurbGate(),
		SourceSheet:      a.cfg.SourceSheet,
		BlurbSheet:       a.cfg.BlurbSheet,
		Workers:          a.cfg.BlurbWorkers,
		MinFeedbackChars: a.cfg.BlurbMinFeedbackChars,
		Logger:           a.logger,
	})

	return gen.Run(ctx)
}

func (a *App) blurbGate() *blurb.Gate {
	var classifier blurb.Classifier
	if a.cfg.SemanticGateEnabled {
		classifier = a.model
	}

	return blurb.NewGate(blurbThresholds(a.cfg), classifier, a.logger)
}

func blurbThresholds(cfg *config.Config) blurb.Thresholds {
	th := blurb.DefaultThresholds()

	th.MinChars = cfg.BlurbMinChars
	th.MinWords = cfg.BlurbMinWords
	th.MaxWords = cfg.BlurbMaxWords
	th.MinSentences = cfg.BlurbMinSentences
	th.ConsonantRun = cfg.BlurbConsonantRun
	th.LeadingWords = cfg.BlurbLeadingWords
	th.MaxLeadingWordLen = cfg.BlurbMaxLeadingWordLen
	th.SemanticMinConfidence = cfg.BlurbSemanticMinConfidence
	th.FallbackMaxWords = cfg.BlurbFallbackMaxWords
	th.FallbackTargetWords = cfg.BlurbFallbackTargetWords
	th.FallbackMinSentenceChars = cfg.BlurbFallbackMinSentenceLen

	return th
}

// RunSummary publishes the rating distribution.
func (a *App) RunSummary(ctx context.Context) (ratings.Summary, error) {
	client, err := a.sheetsClient(ctx)
	if err != nil {
		return ratings.Summary{}, err
	}

	s, err := ratings.Publish(ctx, client, a.cfg.SourceSheet, a.cfg.SummarySheet, a.cfg.SummaryAnchor)
	if err != nil {
		return ratings.Summary{}, err
	}

	a.logger.Info().Str("column", s.Column).Int("categories", len(s.Rows)).Int("total", s.Total).Msg("summary written")

	return s, nil
}

// RunAnalyze prints the blurb outcome analysis to w.
func (a *App) RunAnalyze(ctx context.Context, w io.Writer) (audit.Report, error) {
	client, err := a.sheetsClient(ctx)
	if err != nil {
		return audit.Report{}, err
	}

	blurbTable, err := client.ReadTable(ctx, a.cfg.BlurbSheet)
	if err != nil {
		return audit.Report{}, fmt.Errorf("reading %s: %w", a.cfg.BlurbSheet, err)
	}

	source, err := client.ReadTable(ctx, a.cfg.SourceSheet)
	if err != nil {
		return audit.Report{}, fmt.Errorf("reading %s: %w", a.cfg.SourceSheet, err)
	}

	rep := audit.Analyze(blurbTable, source)

	return rep, rep.WriteText(w)
}

// RunVerify prints which expected tabs exist.
func (a *App) RunVerify(ctx context.Context, w io.Writer) (verify.Result, error) {
	client, err := a.sheetsClient(ctx)
	if err != nil {
		return verify.Result{}, err
	}

	tabs, err := client.Tabs(ctx)
	if err != nil {
		return verify.Result{}, err
	}

	res := verify.Compare(tabs, a.cfg.ExpectedSheets)
	res.WriteText(w)

	return res, nil
}

// RunServe serves the web control surface until ctx is cancelled.
func (a *App) RunServe(ctx context.Context) error {
	chooser := automation.NewWebChooser()

	runner, err := a.newRunner(ctx, chooser)
	if err != nil {
		return err
	}

	srv := web.NewServer(ctx, web.Options{
		Run:         runner.Run,
		Chooser:     chooser,
		Credentials: a.credentials(),
		Logger:      a.logger,
	})

	if !a.cfg.HasLoginCredentials() {
		a.logger.Warn().Msg("HIBOB_EMAIL or HIBOB_PASSWORD not set, runs will fail at login")
	}

	err = observability.NewServer(a.cfg.HTTPPort, srv.Handler(), a.logger).Start(ctx)

	srv.Wait()

	if err != nil {
		return fmt.Errorf("web server: %w", err)
	}

	return nil
}
