// Package web exposes the download automation over HTTP: start a run,
// follow its progress, answer the report selection and stop it.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/platform/worker"
	"github.com/lueurxax/perf-review-sync/internal/process/automation"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 15 * time.Second
)

// RunFunc executes one download run; automation.Runner.Run satisfies it.
type RunFunc func(ctx context.Context, req automation.Request, events chan<- automation.Event) (automation.Result, error)

type Options struct {
	Run         RunFunc
	Chooser     *automation.WebChooser
	Credentials automation.Credentials
	Logger      *zerolog.Logger
}

// Server owns at most one run at a time.
type Server struct {
	run     RunFunc
	chooser *automation.WebChooser
	creds   automation.Credentials
	tracker *Tracker
	broker  *Broker
	logger  *zerolog.Logger

	baseCtx context.Context

	mu     sync.Mutex
	active string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer builds the server. Runs inherit ctx, so cancelling it stops any
// active run.
func NewServer(ctx context.Context, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	broker := NewBroker()

	return &Server{
		run:     opts.Run,
		chooser: opts.Chooser,
		creds:   opts.Credentials,
		tracker: NewTracker(broker),
		broker:  broker,
		logger:  logger,
		baseCtx: ctx,
	}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/start", s.handleStart)
	api.GET("/status", s.handleStatus)
	api.POST("/select", s.handleSelect)
	api.POST("/confirm", s.handleConfirm)
	api.POST("/stop", s.handleStop)
	api.GET("/events", s.handleEvents)

	return r
}

// Wait blocks until the active run, if any, has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

type startRequest struct {
	ReportName string `json:"report_name"`
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report := strings.TrimSpace(req.ReportName)
	if report == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report_name is required"})
		return
	}

	runID := uuid.NewString()
	if err := s.tracker.Begin(runID, report); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	s.startRun(automation.Request{RunID: runID, Query: report, Credentials: s.creds})

	c.JSON(http.StatusAccepted, gin.H{"run_id": runID, "report_name": report})
}

func (s *Server) startRun(req automation.Request) {
	ctx, cancel := context.WithCancel(s.baseCtx)
	events := make(chan automation.Event, eventBuffer)

	s.mu.Lock()
	s.active = req.RunID
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(2)

	outcome := make(chan error, 1)

	go func() {
		defer s.wg.Done()
		// Drain until the run closes the channel so the final event lands.
		s.tracker.Consume(context.Background(), events)
		s.tracker.End(req.RunID, <-outcome)
	}()

	go func() {
		defer s.wg.Done()
		defer cancel()

		err := apperrors.ErrRunAborted

		defer func() { outcome <- err }()
		defer close(events)
		defer s.finish(req.RunID)
		defer worker.RecoverPanic(s.logger, "web run")

		var res automation.Result

		res, err = s.run(ctx, req, events)
		if err != nil {
			s.logger.Warn().Err(err).Str("run_id", req.RunID).Msg("web run ended with error")
			return
		}

		s.logger.Info().Str("run_id", res.RunID).Int("rows", res.Rows).Msg("web run finished")
	}()
}

// finish clears the cancel hook unless a newer run already replaced it.
func (s *Server) finish(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == runID {
		s.active = ""
		s.cancel = nil
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

type selectRequest struct {
	Index   *int `json:"index" binding:"required"`
	FromAll bool `json:"from_all"`
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	s.decide(c, automation.Decision{Index: *req.Index, FromAll: req.FromAll})
}

type confirmRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (s *Server) handleConfirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accept is required"})
		return
	}

	s.decide(c, automation.Decision{Accept: req.Accept})
}

func (s *Server) decide(c *gin.Context, d automation.Decision) {
	chosen, err := s.chooser.Decide(d)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if chosen.Text == "" {
		c.JSON(http.StatusOK, gin.H{"message": "proposal declined, pick a report from the list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"selected": chosen.Text})
}

func (s *Server) handleStop(c *gin.Context) {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		c.JSON(http.StatusConflict, gin.H{"error": apperrors.ErrNoRunInProgress.Error()})
		return
	}

	cancel()

	c.JSON(http.StatusOK, gin.H{"message": "stopping"})
}

func (s *Server) handleEvents(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, release := s.broker.Subscribe()
	defer release()

	if err := writeEvent(w, "snapshot", s.tracker.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}

			if err := writeEvent(w, "progress", e); err != nil {
				s.logger.Debug().Err(err).Msg("sse client gone")
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}

			w.Flush()
		}
	}
}

func writeEvent(w gin.ResponseWriter, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	w.Flush()

	return nil
}

func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrRunInProgress), apperrors.Is(err, apperrors.ErrNoRunInProgress):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrInvalidSelection), apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
