// Package blurbs writes one manager blurb per employee from the uploaded
// performance report into the hidden blurb tab.
package blurbs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/core/llm"
	"github.com/lueurxax/perf-review-sync/internal/core/sheets"
	"github.com/lueurxax/perf-review-sync/internal/platform/observability"
	"github.com/lueurxax/perf-review-sync/internal/process/blurb"
	"github.com/lueurxax/perf-review-sync/internal/process/feedback"
)

const (
	defaultWorkers          = 4
	defaultMinFeedbackChars = 20

	sourceNoFeedback = "no_feedback"
)

// Store reads and replaces spreadsheet tabs.
type Store interface {
	ReadTable(ctx context.Context, title string) (domain.Table, error)
	ReplaceTable(ctx context.Context, title string, table domain.Table, opts sheets.ReplaceOptions) error
}

// Summarizer writes the first draft of a blurb.
type Summarizer interface {
	Summarize(ctx context.Context, req llm.SummaryRequest) (string, error)
}

type Options struct {
	Store            Store
	Summarizer       Summarizer
	Gate             *blurb.Gate
	SourceSheet      string
	BlurbSheet       string
	Workers          int
	MinFeedbackChars int
	Logger           *zerolog.Logger
}

type Generator struct {
	store      Store
	summarizer Summarizer
	gate       *blurb.Gate
	extractor  *blurb.Extractor
	source     string
	target     string
	workers    int
	minChars   int
	logger     *zerolog.Logger
}

// Report counts blurbs by the source that produced them.
type Report struct {
	Rows       int           `json:"rows"`
	Model      int           `json:"model"`
	Fallback   int           `json:"fallback"`
	Manual     int           `json:"manual_review"`
	NoFeedback int           `json:"no_feedback"`
	Duration   time.Duration `json:"duration"`
}

func NewGenerator(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gate := opts.Gate
	if gate == nil {
		gate = blurb.NewGate(blurb.DefaultThresholds(), nil, logger)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	minChars := opts.MinFeedbackChars
	if minChars <= 0 {
		minChars = defaultMinFeedbackChars
	}

	return &Generator{
		store:      opts.Store,
		summarizer: opts.Summarizer,
		gate:       gate,
		extractor:  blurb.NewExtractor(gate.Thresholds()),
		source:     opts.SourceSheet,
		target:     opts.BlurbSheet,
		workers:    workers,
		minChars:   minChars,
		logger:     logger,
	}
}

// Run reads the source tab, generates every blurb and rewrites the blurb tab.
func (g *Generator) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	table, err := g.store.ReadTable(ctx, g.source)
	if err != nil {
		return Report{}, fmt.Errorf("reading %s: %w", g.source, err)
	}

	cols := feedback.MapColumns(table.Header)
	if !cols.Has(feedback.FieldEmployeeID) {
		return Report{}, fmt.Errorf("%w: %s has no employee column", apperrors.ErrInvalidInput, g.source)
	}

	if cols.FeedbackCount() == 0 {
		g.logger.Warn().Str("sheet", g.source).Msg("no feedback columns found, every blurb will be empty")
	}

	results, err := g.generate(ctx, table.Rows, cols)
	if err != nil {
		return Report{}, err
	}

	out := domain.Table{Header: []string{domain.BlurbHeaderID, domain.BlurbHeaderBlurb}}
	rep := Report{}

	for _, r := range results {
		if r.EmployeeID == "" {
			continue
		}

		out.Rows = append(out.Rows, []string{r.EmployeeID, r.Blurb})
		rep.add(r.Source)
		observability.BlurbsGenerated.WithLabelValues(r.Source).Inc()
	}

	opts := sheets.ReplaceOptions{Hidden: true, Header: &sheets.BlurbHeader}
	if err := g.store.ReplaceTable(ctx, g.target, out, opts); err != nil {
		return Report{}, fmt.Errorf("writing %s: %w", g.target, err)
	}

	rep.Duration = time.Since(start)
	observability.BlurbBatchDurationSeconds.Observe(rep.Duration.Seconds())

	g.logger.Info().
		Int("rows", rep.Rows).
		Int("model", rep.Model).
		Int("fallback", rep.Fallback).
		Int("manual_review", rep.Manual).
		Int("no_feedback", rep.NoFeedback).
		Dur("duration", rep.Duration).
		Msg("blurbs written")

	return rep, nil
}

func (g *Generator) generate(ctx context.Context, rows [][]string, cols feedback.Columns) ([]domain.BlurbRow, error) {
	results := make([]domain.BlurbRow, len(rows))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, row := range rows {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			results[i] = g.Blurb(egCtx, row, cols)

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generating blurbs: %w", err)
	}

	return results, nil
}

// Blurb produces the blurb row for one report row.
func (g *Generator) Blurb(ctx context.Context, row []string, cols feedback.Columns) domain.BlurbRow {
	res := domain.BlurbRow{
		EmployeeID: cols.Value(row, feedback.FieldEmployeeID),
		Name:       cols.Value(row, feedback.FieldEmployeeName),
	}

	text := feedback.Extract(row, cols)
	if !feedback.IsUsable(text, g.minChars) {
		res.Blurb = feedback.NoFeedback
		res.Source = sourceNoFeedback

		return res
	}

	th := g.gate.Thresholds()

	var raw string

	if g.summarizer != nil {
		var err error

		raw, err = g.summarizer.Summarize(ctx, llm.SummaryRequest{
			EmployeeName: res.Name,
			Feedback:     text,
			MinWords:     th.MinWords,
			MaxWords:     th.MaxWords,
		})
		if err != nil {
			g.logger.Warn().Err(err).Str("employee", res.EmployeeID).Msg("summarizer failed, using extraction fallback")
		}
	}

	outcome := g.gate.Evaluate(ctx, raw, func() string { return g.extractor.Extract(text) })

	for _, rej := range outcome.Rejections {
		observability.GateRejections.WithLabelValues(string(rej.Source), rej.Stage).Inc()
		g.logger.Debug().
			Str("employee", res.EmployeeID).
			Str("source", string(rej.Source)).
			Str("stage", rej.Stage).
			Str("reason", rej.Reason).
			Msg("blurb rejected")
	}

	if outcome.SemanticSkipped {
		observability.SemanticChecksSkipped.Inc()
	}

	res.Blurb = outcome.Text
	res.Source = string(outcome.Source)

	return res
}

func (r *Report) add(source string) {
	r.Rows++

	switch source {
	case string(blurb.SourceModel):
		r.Model++
	case string(blurb.SourceFallback):
		r.Fallback++
	case string(blurb.SourceSentinel):
		r.Manual++
	case sourceNoFeedback:
		r.NoFeedback++
	}
}
