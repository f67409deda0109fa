package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options controls how the browser is started
type Options struct {
	Headless       bool
	SlowMo         time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	// InstallDriver downloads the playwright driver and chromium before launch
	InstallDriver bool
}

// Launcher starts chromium through playwright
type Launcher struct {
	opts   Options
	logger *logrus.Logger
}

// NewLauncher - creates new playwright launcher
func NewLauncher(opts Options, logger *logrus.Logger) *Launcher {
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = 1280, 720
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Launcher{opts: opts, logger: logger}
}

// Launch - starts playwright, chromium, one context and one page
func (l *Launcher) Launch(ctx context.Context) (interfaces.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.opts.InstallDriver {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		SlowMo:   playwright.Float(float64(l.opts.SlowMo.Milliseconds())),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--disable-infobars",
			"--disable-notifications",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  l.opts.ViewportWidth,
			Height: l.opts.ViewportHeight,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
		UserAgent:         playwright.String(l.opts.UserAgent),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		l.logger.WithField("component", "browser").Infof("accepting %s dialog: %s", dialog.Type(), dialog.Message())
		dialog.Accept()
	})

	l.logger.WithFields(logrus.Fields{
		"component": "browser",
		"headless":  l.opts.Headless,
	}).Info("browser started")

	return &session{pw: pw, browser: browser, context: bctx, page: page}, nil
}

// session is the single page a run works with
type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// Navigate - navigates to the specified URL and waits for network idle
func (s *session) Navigate(url string, timeout time.Duration) (entities.PageInfo, error) {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   millis(timeout),
	})
	if err != nil {
		return entities.PageInfo{}, err
	}

	title, _ := s.page.Title()
	return entities.PageInfo{URL: s.page.URL(), Title: title}, nil
}

func (s *session) WaitIdle(timeout time.Duration) {
	s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: millis(timeout),
	})
}

func (s *session) URL() string {
	return s.page.URL()
}

func (s *session) Title() (string, error) {
	return s.page.Title()
}

func (s *session) MainDocument() interfaces.Document {
	return &document{name: "main", frame: s.page.MainFrame()}
}

func (s *session) FirstFrame() (interfaces.Document, bool) {
	children := s.page.MainFrame().ChildFrames()
	if len(children) == 0 {
		return nil, false
	}
	return &document{name: "iframe[0]", frame: children[0]}, true
}

func (s *session) Screenshot(fullPage bool) ([]byte, error) {
	return s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
}

// Close - closes context, browser and the playwright driver
func (s *session) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
		s.context = nil
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !isClosedErr(err) {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		s.browser = nil
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		s.pw = nil
	}

	return errors.Join(errs...)
}

// isClosedErr - true for errors about a target that is already gone
func isClosedErr(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
