// Package automation runs the report download flow: sign in, scrape the
// cycles table, match the requested report, let a Chooser settle on one,
// download it and upload the rows to the source tab.
package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
	"github.com/lueurxax/perf-review-sync/internal/ingest/report"
	"github.com/lueurxax/perf-review-sync/internal/platform/observability"
	"github.com/lueurxax/perf-review-sync/internal/process/reportmatch"
)

// Browser is the part of a browser session the runner drives.
type Browser interface {
	Login(ctx context.Context, email, password string) error
	OpenCycles(ctx context.Context) error
	ScrapeLabels(ctx context.Context) ([]string, error)
	OpenReport(ctx context.Context, label string) error
	DownloadReport(ctx context.Context) (string, error)
	Close() error
}

// Opener starts a browser session for one run.
type Opener func(ctx context.Context) (Browser, error)

// Uploader replaces a spreadsheet tab.
type Uploader interface {
	ReplaceTable(ctx context.Context, title string, table domain.Table, opts sheets.ReplaceOptions) error
}

// Credentials are the platform login.
type Credentials struct {
	Email    string
	Password string
}

// Request starts one run. RunID is generated when empty.
type Request struct {
	RunID       string
	Query       string
	Credentials Credentials
}

// Result describes a finished run.
type Result struct {
	RunID  string `json:"run_id"`
	Report string `json:"report"`
	File   string `json:"file"`
	Rows   int    `json:"rows"`
}

// Options wires a Runner.
type Options struct {
	Open        Opener
	Sheets      Uploader
	Chooser     Chooser
	SourceSheet string
	Logger      *zerolog.Logger
}

type Runner struct {
	open        Opener
	sheets      Uploader
	chooser     Chooser
	sourceSheet string
	readReport  func(path string) (domain.Table, error)
	logger      *zerolog.Logger
}

func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	chooser := opts.Chooser
	if chooser == nil {
		chooser = AutoChooser{}
	}

	return &Runner{
		open:        opts.Open,
		sheets:      opts.Sheets,
		chooser:     chooser,
		sourceSheet: opts.SourceSheet,
		readReport:  report.ReadFile,
		logger:      logger,
	}
}

// run carries per-run state so emit can stamp every event.
type run struct {
	id     string
	events chan<- Event
	logger zerolog.Logger
}

func (r *run) emit(ctx context.Context, e Event) {
	e.RunID = r.id
	e.Time = time.Now()

	if r.events == nil {
		return
	}

	select {
	case r.events <- e:
	case <-ctx.Done():
		// Still try to deliver the final event of a stopped run.
		select {
		case r.events <- e:
		default:
		}
	}
}

func (r *run) step(ctx context.Context, stage Stage, msg string) {
	r.logger.Info().Str("stage", string(stage)).Msg(msg)
	r.emit(ctx, Event{Stage: stage, Status: StatusRunning, Message: msg})
}

// Run executes one download. Events, when non-nil, receive progress and
// exactly one terminal event; Run never closes the channel.
func (r *Runner) Run(ctx context.Context, req Request, events chan<- Event) (Result, error) {
	id := req.RunID
	if id == "" {
		id = uuid.NewString()
	}

	rn := &run{id: id, events: events, logger: r.logger.With().Str("run_id", id).Str("report", req.Query).Logger()}

	observability.AutomationRunsActive.Inc()
	defer observability.AutomationRunsActive.Dec()

	res, stage, err := r.execute(ctx, rn, req)
	if err != nil {
		status := StatusFailed
		if ctx.Err() != nil {
			status = StatusStopped
		}

		rn.logger.Error().Err(err).Str("stage", string(stage)).Msg("download run failed")
		rn.emit(ctx, Event{Stage: stage, Status: status, Message: "run " + string(status), Err: err.Error()})

		return Result{RunID: id}, err
	}

	res.RunID = id

	rn.logger.Info().Str("file", res.File).Int("rows", res.Rows).Msg("download run completed")
	rn.emit(ctx, Event{
		Stage:   StageDone,
		Status:  StatusCompleted,
		Message: fmt.Sprintf("uploaded %d rows from %s", res.Rows, res.Report),
	})

	return res, nil
}

func (r *Runner) execute(ctx context.Context, rn *run, req Request) (Result, Stage, error) {
	if req.Credentials.Email == "" || req.Credentials.Password == "" {
		return Result{}, StageLogin, fmt.Errorf("%w: email and password are required", apperrors.ErrMissingCredentials)
	}

	rn.step(ctx, StageLogin, "starting browser")

	b, err := r.open(ctx)
	if err != nil {
		return Result{}, StageLogin, err
	}

	defer func() {
		if cerr := b.Close(); cerr != nil {
			rn.logger.Warn().Err(cerr).Msg("closing browser")
		}
	}()

	if err := b.Login(ctx, req.Credentials.Email, req.Credentials.Password); err != nil {
		return Result{}, StageLogin, err
	}

	rn.step(ctx, StageCycles, "opening performance cycles")

	if err := b.OpenCycles(ctx); err != nil {
		return Result{}, StageCycles, err
	}

	labels, err := b.ScrapeLabels(ctx)
	if err != nil {
		return Result{}, StageCycles, err
	}

	rn.step(ctx, StageMatch, fmt.Sprintf("matching %q against %d rows", req.Query, len(labels)))

	selection, err := reportmatch.FindReport(req.Query, labels)
	if err != nil {
		observability.ReportSearches.WithLabelValues("no_candidates").Inc()
		return Result{}, StageMatch, err
	}

	observability.ReportSearches.WithLabelValues(string(selection.Status)).Inc()

	rn.emit(ctx, Event{
		Stage:   StageSelect,
		Status:  StatusWaiting,
		Message: fmt.Sprintf("%s match for %q", selection.Status, req.Query),
		Matches: &selection,
	})

	chosen, err := r.chooser.Choose(ctx, selection)
	if err != nil {
		return Result{}, StageSelect, err
	}

	rn.step(ctx, StageDownload, "downloading "+chosen.Text)

	path, err := r.download(ctx, b, chosen.Text)
	if err != nil {
		observability.ReportDownloads.WithLabelValues("failed").Inc()
		return Result{}, StageDownload, err
	}

	observability.ReportDownloads.WithLabelValues("ok").Inc()

	rn.step(ctx, StageUpload, "uploading to "+r.sourceSheet)

	rows, err := r.upload(ctx, path)
	if err != nil {
		return Result{}, StageUpload, err
	}

	return Result{Report: chosen.Text, File: path, Rows: rows}, StageDone, nil
}

func (r *Runner) download(ctx context.Context, b Browser, label string) (string, error) {
	if err := b.OpenReport(ctx, label); err != nil {
		return "", err
	}

	path, err := b.DownloadReport(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrDownloadFailed, err)
	}

	return path, nil
}

func (r *Runner) upload(ctx context.Context, path string) (int, error) {
	table, err := r.readReport(path)
	if err != nil {
		return 0, err
	}

	opts := sheets.ReplaceOptions{Header: &sheets.ReportHeader}
	if err := r.sheets.ReplaceTable(ctx, r.sourceSheet, table, opts); err != nil {
		return 0, fmt.Errorf("uploading report: %w", err)
	}

	observability.RowsUploaded.WithLabelValues(r.sourceSheet).Add(float64(len(table.Rows)))

	return len(table.Rows), nil
}
