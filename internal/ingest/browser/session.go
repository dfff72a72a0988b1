// Package browser drives the HR platform UI through a headless Chromium:
// SSO login, scraping the review cycles table and downloading a cycle report.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/ingest/report"
	"github.com/lueurxax/perf-review-sync/internal/platform/worker"
)

const (
	selectorTimeout   = 3 * time.Second
	loginWaitTimeout  = 60 * time.Second
	tableWaitTimeout  = 30 * time.Second
	downloadTimeout   = 60 * time.Second
	urlPollInterval   = 500 * time.Millisecond
	appHostMarker     = "app.hibob.com"
	loginPathMarker   = "/login"
	screenshotPerm    = 0o644
	downloadDirPerm   = 0o755
	tableSelector     = `table, [role="table"], [role="row"]`
	reportRowSelector = `tr, [role="row"]`
)

// target is one way of locating an element: a CSS selector, optionally
// narrowed to elements whose text matches a pattern.
type target struct {
	css  string
	text string
}

var (
	emailTargets = []target{
		{css: `input[type="email"]`},
		{css: `input[name="email"]`},
		{css: `input[id*="email"]`},
		{css: `input[placeholder*="mail"]`},
	}
	passwordTargets = []target{
		{css: `input[type="password"]`},
		{css: `input[name="password"]`},
		{css: `#password`},
		{css: `[data-testid*="password"]`},
	}
	continueTargets = []target{
		{css: "button", text: `(?i)^\s*(continue|next)\s*$`},
		{css: `button[type="submit"]`},
		{css: `input[type="submit"]`},
	}
	signInTargets = []target{
		{css: "button", text: `(?i)^\s*(sign in|log in|login)\s*$`},
		{css: `button[type="submit"]`},
	}
	actionsTargets = []target{
		{css: "button", text: `(?i)^\s*actions?\s*$`},
		{css: `button[aria-label*="ction"]`},
	}
	downloadMenuTargets = []target{
		{css: `[role="menuitem"]`, text: `(?i)download cycle report`},
		{css: "button", text: `(?i)download cycle report`},
		{css: "a", text: `(?i)download cycle report`},
	}
	modalDownloadTargets = []target{
		{css: `[role="dialog"] button`, text: `(?i)^\s*download\s*$`},
		{css: `[role="dialog"] button`, text: `(?i)download report`},
	}
)

// Options configures a browser session.
type Options struct {
	Bin           string
	Headless      bool
	Timeout       time.Duration
	LoginURL      string
	CyclesURL     string
	DownloadDir   string
	ScreenshotDir string
}

// Session owns one browser and its single working page.
type Session struct {
	opts    Options
	browser *rod.Browser
	page    *rod.Page
	logger  *zerolog.Logger
}

// Launch starts Chromium and opens a blank page.
func Launch(ctx context.Context, opts Options, logger *zerolog.Logger) (*Session, error) {
	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := connectOrKill(l, b.Connect); err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = tableWaitTimeout
	}

	logger.Info().Bool("headless", opts.Headless).Msg("browser session started")

	return &Session{opts: opts, browser: b, page: page, logger: logger}, nil
}

// killer is the part of launcher.Launcher that stops the Chromium process.
type killer interface {
	Kill()
}

// connectOrKill runs connect and kills the launched process when it fails,
// since no Browser exists yet to close it.
func connectOrKill(l killer, connect func() error) error {
	if err := connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	return nil
}

// Close shuts the browser down.
func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}

	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}

	return nil
}

// Login walks the two-step SSO form: email, continue, password, sign in.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if err := s.navigate(ctx, s.opts.LoginURL); err != nil {
		return s.fail("login", fmt.Errorf("%w: %w", apperrors.ErrLoginFailed, err))
	}

	if err := s.fill(ctx, "email", emailTargets, email); err != nil {
		return s.fail("login-email", fmt.Errorf("%w: %w", apperrors.ErrLoginFailed, err))
	}

	if err := s.clickOrEnter(ctx, continueTargets, emailTargets); err != nil {
		return s.fail("login-continue", fmt.Errorf("%w: %w", apperrors.ErrLoginFailed, err))
	}

	if err := s.fill(ctx, "password", passwordTargets, password); err != nil {
		return s.fail("login-password", fmt.Errorf("%w: %w", apperrors.ErrLoginFailed, err))
	}

	if err := s.clickOrEnter(ctx, signInTargets, passwordTargets); err != nil {
		return s.fail("login-submit", fmt.Errorf("%w: %w", apperrors.ErrLoginFailed, err))
	}

	if err := s.waitForApp(ctx); err != nil {
		return s.fail("login-redirect", err)
	}

	s.logger.Info().Msg("signed in")

	return nil
}

// OpenCycles navigates to the review cycles list and waits for the table.
func (s *Session) OpenCycles(ctx context.Context) error {
	if err := s.navigate(ctx, s.opts.CyclesURL); err != nil {
		return s.fail("cycles", err)
	}

	if _, err := s.page.Context(ctx).Timeout(s.opts.Timeout).Element(tableSelector); err != nil {
		return s.fail("cycles-table", fmt.Errorf("%w: cycles table: %w", apperrors.ErrElementNotFound, err))
	}

	// Rows render after the table shell.
	if err := s.page.Context(ctx).Timeout(s.opts.Timeout).WaitStable(time.Second); err != nil {
		s.logger.Debug().Err(err).Msg("cycles page did not settle")
	}

	return nil
}

// ScrapeLabels returns the raw row labels of the cycles table.
func (s *Session) ScrapeLabels(ctx context.Context) ([]string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("reading cycles page: %w", err)
	}

	labels, err := ExtractRowLabels(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("rows", len(labels)).Msg("scraped cycles table")

	return labels, nil
}

// OpenReport clicks the table row whose text contains label.
func (s *Session) OpenReport(ctx context.Context, label string) error {
	pattern := regexp.QuoteMeta(label)

	row, err := s.page.Context(ctx).Timeout(s.opts.Timeout).ElementR(reportRowSelector, pattern)
	if err != nil {
		return s.fail("open-report", fmt.Errorf("%w: row %q: %w", apperrors.ErrElementNotFound, label, err))
	}

	if err := row.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return s.fail("open-report", fmt.Errorf("clicking row %q: %w", label, err))
	}

	if err := s.page.Context(ctx).Timeout(s.opts.Timeout).WaitLoad(); err != nil {
		s.logger.Debug().Err(err).Msg("report page load wait failed")
	}

	return nil
}

// DownloadReport triggers the cycle report export and returns the saved file
// path. When the download event never arrives the newest report file in the
// download directory is used.
func (s *Session) DownloadReport(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.opts.DownloadDir, downloadDirPerm); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	dir, err := filepath.Abs(s.opts.DownloadDir)
	if err != nil {
		return "", fmt.Errorf("resolving download dir: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	wait := s.browser.Context(waitCtx).WaitDownload(dir)

	if err := s.click(ctx, "actions", actionsTargets); err != nil {
		return "", s.fail("download-actions", err)
	}

	if err := s.click(ctx, "download menu", downloadMenuTargets); err != nil {
		return "", s.fail("download-menu", err)
	}

	// The employee fields modal only shows up on some cycles.
	if err := s.click(ctx, "modal download", modalDownloadTargets); err != nil {
		s.logger.Debug().Msg("no download modal shown")
	}

	if info := wait(); info != nil {
		return s.saveDownload(dir, info)
	}

	s.logger.Warn().Msg("download event not observed, using newest file in download dir")

	path, err := report.Newest(dir)
	if err != nil {
		return "", s.fail("download", err)
	}

	return path, nil
}

func (s *Session) saveDownload(dir string, info *proto.PageDownloadWillBegin) (string, error) {
	saved := filepath.Join(dir, info.GUID)

	name := filepath.Base(info.SuggestedFilename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return saved, nil
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(saved, final); err != nil {
		return "", fmt.Errorf("%w: renaming %s: %w", apperrors.ErrDownloadFailed, info.GUID, err)
	}

	s.logger.Info().Str("file", final).Msg("report downloaded")

	return final, nil
}

func (s *Session) navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx).Timeout(s.opts.Timeout)

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}

	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s: %w", url, err)
	}

	return nil
}

func (s *Session) find(ctx context.Context, what string, targets []target) (*rod.Element, error) {
	for _, t := range targets {
		p := s.page.Context(ctx).Timeout(selectorTimeout)

		var (
			el  *rod.Element
			err error
		)

		if t.text != "" {
			el, err = p.ElementR(t.css, t.text)
		} else {
			el, err = p.Element(t.css)
		}

		if err == nil {
			return el.CancelTimeout(), nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s", apperrors.ErrElementNotFound, what)
}

func (s *Session) fill(ctx context.Context, what string, targets []target, value string) error {
	el, err := s.find(ctx, what, targets)
	if err != nil {
		return err
	}

	if err := el.SelectAllText(); err != nil {
		s.logger.Debug().Err(err).Str("field", what).Msg("select all failed")
	}

	if err := el.Input(value); err != nil {
		return fmt.Errorf("typing %s: %w", what, err)
	}

	return nil
}

func (s *Session) click(ctx context.Context, what string, targets []target) error {
	el, err := s.find(ctx, what, targets)
	if err != nil {
		return err
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking %s: %w", what, err)
	}

	return nil
}

// clickOrEnter clicks the first matching button, or presses Enter in the
// field when no button can be found.
func (s *Session) clickOrEnter(ctx context.Context, buttons, field []target) error {
	if err := s.click(ctx, "submit button", buttons); err == nil {
		return nil
	}

	el, err := s.find(ctx, "input field", field)
	if err != nil {
		return err
	}

	if err := el.Type(input.Enter); err != nil {
		return fmt.Errorf("pressing enter: %w", err)
	}

	return nil
}

func (s *Session) waitForApp(ctx context.Context) error {
	var last *proto.TargetTargetInfo

	err := worker.Poll(ctx, worker.PollConfig{
		Name:     "app redirect",
		Interval: urlPollInterval,
		Timeout:  loginWaitTimeout,
		Logger:   s.logger,
	}, func(ctx context.Context) (bool, error) {
		info, err := s.page.Context(ctx).Info()
		if err != nil {
			return false, nil //nolint:nilerr // page may be mid-navigation
		}

		last = info

		return strings.Contains(info.URL, appHostMarker) && !strings.Contains(info.URL, loginPathMarker), nil
	})
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return fmt.Errorf("%w: still on %s", apperrors.ErrLoginFailed, currentURL(last))
}

func currentURL(info *proto.TargetTargetInfo) string {
	if info == nil {
		return "unknown page"
	}

	return info.URL
}

// fail saves a screenshot for the failing step and returns err unchanged.
func (s *Session) fail(step string, err error) error {
	if s.opts.ScreenshotDir == "" {
		return err
	}

	if mkErr := os.MkdirAll(s.opts.ScreenshotDir, downloadDirPerm); mkErr != nil {
		s.logger.Warn().Err(mkErr).Msg("cannot create screenshot dir")
		return err
	}

	img, shotErr := s.page.Screenshot(true, nil)
	if shotErr != nil {
		s.logger.Warn().Err(shotErr).Str("step", step).Msg("screenshot failed")
		return err
	}

	name := fmt.Sprintf("%s-%s.png", step, time.Now().Format("20060102-150405"))
	path := filepath.Join(s.opts.ScreenshotDir, name)

	if wErr := os.WriteFile(path, img, screenshotPerm); wErr != nil {
		s.logger.Warn().Err(wErr).Msg("writing screenshot failed")
		return err
	}

	s.logger.Error().Err(err).Str("step", step).Str("screenshot", path).Msg("browser step failed")

	return err
}
