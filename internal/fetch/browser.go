// Package fetch - browser.go provides the headless browser session used for authenticated scraping.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is a single browser tab driven step by step.
// A Session is owned by one scrape and must be closed exactly once.
type Session interface {
	// Navigate loads url in the tab
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until selector is present in the DOM or timeout elapses
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error
	// SendKeys types text into the element matched by selector
	SendKeys(ctx context.Context, selector, text string) error
	// Click clicks the element matched by selector
	Click(ctx context.Context, selector string) error
	// ScrollTo scrolls to fraction (0..1) of the document height
	ScrollTo(ctx context.Context, fraction float64) error
	// Location returns the current URL of the tab
	Location(ctx context.Context) (string, error)
	// HTML returns the rendered outer HTML of the document
	HTML(ctx context.Context) (string, error)
	// Close releases the tab and the browser process
	Close() error
}

// Launcher opens new browser sessions
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// LauncherFunc adapts a function to the Launcher interface
type LauncherFunc func(ctx context.Context) (Session, error)

// Launch calls f(ctx)
func (f LauncherFunc) Launch(ctx context.Context) (Session, error) {
	return f(ctx)
}

// BrowserOptions configures the Chrome process
type BrowserOptions struct {
	Headless      bool
	WindowWidth   int
	WindowHeight  int
	UserAgent     string
	// ExecPath selects the Chrome binary; empty searches PATH
	ExecPath string
	// ActionTimeout bounds browser startup and every tab action
	ActionTimeout time.Duration
}

// DefaultBrowserOptions returns the options used for profile scraping.
func DefaultBrowserOptions() *BrowserOptions {
	return &BrowserOptions{
		Headless:      true,
		WindowWidth:   1920,
		WindowHeight:  1080,
		ActionTimeout: DefaultTimeout,
	}
}

// ChromeLauncher starts a local Chrome/Chromium through chromedp.
// Requires Chrome/Chromium to be installed on the system.
type ChromeLauncher struct {
	Options *BrowserOptions
}

// NewChromeLauncher creates a launcher; nil opts uses DefaultBrowserOptions
func NewChromeLauncher(opts *BrowserOptions) *ChromeLauncher {
	if opts == nil {
		opts = DefaultBrowserOptions()
	}
	return &ChromeLauncher{Options: opts}
}

// Launch starts the browser and opens a tab
func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	opts := l.Options
	if opts == nil {
		opts = DefaultBrowserOptions()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// The browser outlives individual calls, so it is not bound to ctx.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	release := func() {
		browserCancel()
		allocCancel()
	}

	// Startup alone is bounded by ctx and the action timeout.
	if err := startBrowser(ctx, browserCtx, timeout); err != nil {
		release()
		return nil, &Error{URL: "about:blank", Message: "failed to start browser", Cause: err}
	}

	return &chromeSession{
		ctx:     browserCtx,
		timeout: timeout,
		release: release,
	}, nil
}

// startBrowser runs the first action on browserCtx, which launches the process.
// It returns early when ctx is done or timeout elapses; the caller then cancels browserCtx.
func startBrowser(ctx, browserCtx context.Context, timeout time.Duration) error {
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-started:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("browser did not start within %s: %w", timeout, context.DeadlineExceeded)
	}
}

type chromeSession struct {
	ctx     context.Context
	timeout time.Duration
	release func()

	closeOnce sync.Once
	closeErr  error
}

// run executes actions on the tab, bounded by timeout and cancelled with ctx
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.timeout, chromedp.Navigate(url)); err != nil {
		return &Error{URL: url, Message: "navigation failed", Cause: err}
	}
	return nil
}

func (s *chromeSession) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.timeout
	}
	if err := s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) SendKeys(ctx context.Context, selector, text string) error {
	if err := s.run(ctx, s.timeout, chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("typing into %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, s.timeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %q: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) ScrollTo(ctx context.Context, fraction float64) error {
	script := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %g);", fraction)
	if err := s.run(ctx, s.timeout, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("scrolling to %.2f: %w", fraction, err)
	}
	return nil
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, s.timeout, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return location, nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		// Cancel closes the tab and waits for the browser to exit.
		s.closeErr = chromedp.Cancel(s.ctx)
		s.release()
	})
	return s.closeErr
}
