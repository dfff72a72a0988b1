package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_report_searches_total",
		Help: "Report searches by match status",
	}, []string{"status"})

	ReportDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_report_downloads_total",
		Help: "Report download attempts by outcome",
	}, []string{"status"})

	RowsUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_rows_uploaded_total",
		Help: "Rows written to spreadsheet tabs",
	}, []string{"sheet"})

	SheetRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_sheet_requests_total",
		Help: "Spreadsheet API calls by operation and outcome",
	}, []string{"op", "status"})

	BlurbsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_blurbs_generated_total",
		Help: "Blurbs written by the source that produced them",
	}, []string{"source"})

	GateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_gate_rejections_total",
		Help: "Quality gate rejections by candidate source and stage",
	}, []string{"source", "stage"})

	SemanticChecksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perfsync_semantic_checks_skipped_total",
		Help: "Blurbs accepted without a semantic check",
	})

	BlurbBatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "perfsync_blurb_batch_duration_seconds",
		Help:    "Duration of a full blurb generation batch",
		Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800, 3600},
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "perfsync_llm_request_duration_seconds",
		Help:    "Duration of model requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "task"})

	LLMRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfsync_llm_request_errors_total",
		Help: "Failed model requests by task",
	}, []string{"task"})

	AutomationRunsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "perfsync_automation_runs_active",
		Help: "Download runs currently in progress",
	})
)
