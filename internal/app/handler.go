package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/process/automation"
	"github.com/lueurxax/perf-review-sync/internal/process/reportmatch"
)

// Event is the serverless invocation payload. Credentials in Config
// override the environment.
type Event struct {
	ReportName string `json:"report_name"`
	Config     struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"config"`
}

// Response mirrors the gateway response shape: Body is a JSON document.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message,omitempty"`
	Error      string   `json:"error,omitempty"`
	ReportName string   `json:"report_name,omitempty"`
	Rows       int      `json:"rows,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// Handle runs one non-interactive download described by a raw event. The
// event may also arrive as a JSON string holding the object.
func (a *App) Handle(ctx context.Context, raw []byte) Response {
	ev, err := parseEvent(raw)
	if err != nil {
		return respond(http.StatusBadRequest, responseBody{Error: err.Error()})
	}

	report := strings.TrimSpace(ev.ReportName)
	if report == "" {
		return respond(http.StatusBadRequest, responseBody{Error: "report_name is required in event"})
	}

	creds := a.credentials()
	if ev.Config.Email != "" {
		creds.Email = ev.Config.Email
	}

	if ev.Config.Password != "" {
		creds.Password = ev.Config.Password
	}

	if creds.Email == "" || creds.Password == "" {
		return respond(http.StatusBadRequest, responseBody{
			Error:      "credentials required: set HIBOB_EMAIL and HIBOB_PASSWORD or provide config.email and config.password",
			ReportName: report,
		})
	}

	chooser := &recordingChooser{}

	res, err := a.download(ctx, automation.Request{Query: report, Credentials: creds}, chooser)
	if err != nil {
		a.logger.Error().Err(err).Str("report", report).Msg("serverless run failed")

		body := responseBody{Error: err.Error(), ReportName: report}

		if apperrors.Is(err, apperrors.ErrAmbiguousMatch) {
			body.Candidates = chooser.candidates
			return respond(http.StatusBadRequest, body)
		}

		return respond(http.StatusInternalServerError, body)
	}

	return respond(http.StatusOK, responseBody{
		Success:    true,
		Message:    fmt.Sprintf("report %q downloaded and uploaded", res.Report),
		ReportName: res.Report,
		Rows:       res.Rows,
	})
}

func parseEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err == nil {
		return ev, nil
	}

	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Event{}, fmt.Errorf("%w: event is not a JSON object", apperrors.ErrInvalidInput)
	}

	if err := json.Unmarshal([]byte(wrapped), &ev); err != nil {
		return Event{}, fmt.Errorf("%w: event is not a JSON object", apperrors.ErrInvalidInput)
	}

	return ev, nil
}

func respond(code int, body responseBody) Response {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"success":false}`)
	}

	return Response{StatusCode: code, Body: string(data)}
}

// recordingChooser behaves like AutoChooser and keeps the labels it was
// offered so an ambiguous response can list them.
type recordingChooser struct {
	candidates []string
}

func (r *recordingChooser) Choose(ctx context.Context, res reportmatch.SelectionResult) (reportmatch.Candidate, error) {
	r.candidates = r.candidates[:0]

	for _, m := range res.Matches {
		r.candidates = append(r.candidates, m.Text)
	}

	if len(r.candidates) == 0 {
		for _, c := range res.All {
			r.candidates = append(r.candidates, c.Text)
		}
	}

	return automation.AutoChooser{}.Choose(ctx, res)
}
