// Package resolver finds an actionable element for a locator hint across the main
// document and the first embedded frame.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is matched by every NotFoundError
	ErrNotFound = errors.New("element not found")

	// ErrNoFrame is returned when the page has no embedded frame to inspect
	ErrNoFrame = errors.New("no embedded frame on the page")
)

const (
	DefaultWait         = 3 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
)

// ScopeKind names a document in the frame scope
type ScopeKind string

const (
	ScopeMain  ScopeKind = "main"
	ScopeFrame ScopeKind = "iframe"
)

// Strategy is one interpretation of a hint in one document
type Strategy struct {
	Scope ScopeKind
	Kind  entities.HintKind
}

func (s Strategy) String() string {
	return fmt.Sprintf("%s/%s", s.Scope, s.Kind)
}

// DefaultStrategies is the resolution order. The main document always comes
// before the frame, and a selector reading before a text reading.
var DefaultStrategies = []Strategy{
	{Scope: ScopeMain, Kind: entities.HintSelector},
	{Scope: ScopeMain, Kind: entities.HintText},
	{Scope: ScopeFrame, Kind: entities.HintSelector},
	{Scope: ScopeFrame, Kind: entities.HintText},
}

// Resolution is a visible element and how it was found
type Resolution struct {
	Element  interfaces.Element
	Strategy Strategy
	Document string
}

// NotFoundError reports a hint no strategy could resolve
type NotFoundError struct {
	Hint     entities.Hint
	Tried    []string
	Timeout  time.Duration
	DumpPath string
	Cause    error
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no visible element for %s within %s", e.Hint, e.Timeout)
	if len(e.Tried) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Tried, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.DumpPath != "" {
		fmt.Fprintf(&b, "; iframe markup saved to %s", e.DumpPath)
	}
	return b.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Resolver walks the strategy list against one page
type Resolver struct {
	page         interfaces.Page
	archiver     interfaces.Archiver
	metrics      interfaces.Metrics
	logger       *logrus.Logger
	strategies   []Strategy
	wait         time.Duration
	pollInterval time.Duration
}

// Option configures a Resolver
type Option func(*Resolver)

// WithStrategies replaces the resolution order
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) {
		r.strategies = append([]Strategy(nil), strategies...)
	}
}

// WithWait sets the visibility wait applied to each strategy
func WithWait(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.wait = d
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithArchiver enables the iframe markup dump on failed resolutions
func WithArchiver(a interfaces.Archiver) Option {
	return func(r *Resolver) {
		r.archiver = a
	}
}

func WithMetrics(m interfaces.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// New - creates a resolver bound to the run's page
func New(page interfaces.Page, logger *logrus.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		page:         page,
		logger:       logger,
		strategies:   DefaultStrategies,
		wait:         DefaultWait,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve tries each applicable strategy in order, waiting up to the
// per-strategy bound for the first match to become visible.
func (r *Resolver) Resolve(ctx context.Context, hint entities.Hint) (res *Resolution, err error) {
	var tried []string
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = r.notFound(hint, tried, r.wait, fmt.Errorf("resolver panic: %v", p))
		}
	}()

	frame, hasFrame := r.page.FirstFrame()

	for _, s := range r.strategies {
		if !hint.Allows(s.Kind) {
			continue
		}
		doc := r.page.MainDocument()
		if s.Scope == ScopeFrame {
			if !hasFrame {
				continue
			}
			doc = frame
		}
		if ctx.Err() != nil {
			return nil, r.notFound(hint, tried, r.wait, ctx.Err())
		}

		tried = append(tried, s.String())
		el := doc.Find(s.Kind, hint.Raw)
		if err := el.WaitVisible(r.wait); err != nil {
			r.log(hint, s).WithError(err).Debug("strategy did not match")
			continue
		}

		r.log(hint, s).Debug("resolved")
		if r.metrics != nil {
			r.metrics.ObserveResolution(s.String())
		}
		return &Resolution{Element: el, Strategy: s, Document: doc.Name()}, nil
	}

	return nil, r.notFound(hint, tried, r.wait, nil)
}

// WaitVisible polls every applicable strategy without blocking on any of them
// until one reports a visible match or timeout has elapsed.
func (r *Resolver) WaitVisible(ctx context.Context, hint entities.Hint, timeout time.Duration) (res *Resolution, err error) {
	var tried []string
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = r.notFound(hint, tried, timeout, fmt.Errorf("resolver panic: %v", p))
		}
	}()

	deadline := time.Now().Add(timeout)
	for {
		frame, hasFrame := r.page.FirstFrame()
		tried = tried[:0]
		for _, s := range r.strategies {
			if !hint.Allows(s.Kind) {
				continue
			}
			doc := r.page.MainDocument()
			if s.Scope == ScopeFrame {
				if !hasFrame {
					continue
				}
				doc = frame
			}
			tried = append(tried, s.String())
			el := doc.Find(s.Kind, hint.Raw)
			if visible, _ := el.IsVisible(); visible {
				if r.metrics != nil {
					r.metrics.ObserveResolution(s.String())
				}
				return &Resolution{Element: el, Strategy: s, Document: doc.Name()}, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		sleep := r.pollInterval
		if remaining < sleep {
			sleep = remaining
		}
		select {
		case <-ctx.Done():
			return nil, r.notFound(hint, tried, timeout, ctx.Err())
		case <-time.After(sleep):
		}
	}

	return nil, r.notFound(hint, tried, timeout, nil)
}

// DumpFrame saves the first embedded frame's body markup to the debug file
func (r *Resolver) DumpFrame() (string, error) {
	if r.archiver == nil {
		return "", fmt.Errorf("no archiver configured for markup dumps")
	}
	frame, ok := r.page.FirstFrame()
	if !ok {
		return "", ErrNoFrame
	}
	html, err := frame.BodyHTML(r.wait)
	if err != nil {
		return "", fmt.Errorf("failed to read %s body: %w", frame.Name(), err)
	}
	return r.archiver.WriteDebugMarkup(html)
}

func (r *Resolver) notFound(hint entities.Hint, tried []string, timeout time.Duration, cause error) *NotFoundError {
	e := &NotFoundError{
		Hint:    hint,
		Tried:   append([]string(nil), tried...),
		Timeout: timeout,
		Cause:   cause,
	}

	path, err := r.safeDump()
	switch {
	case err == nil:
		e.DumpPath = path
	case errors.Is(err, ErrNoFrame):
	default:
		r.logger.WithField("component", "resolver").WithError(err).Warn("iframe markup dump failed")
	}

	r.logger.WithFields(logrus.Fields{
		"component": "resolver",
		"hint":      hint.String(),
		"tried":     strings.Join(e.Tried, ","),
	}).Info("element not found")
	return e
}

func (r *Resolver) safeDump() (path string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("markup dump panic: %v", p)
		}
	}()
	if r.archiver == nil {
		return "", ErrNoFrame
	}
	return r.DumpFrame()
}

func (r *Resolver) log(hint entities.Hint, s Strategy) *logrus.Entry {
	return r.logger.WithFields(logrus.Fields{
		"component": "resolver",
		"hint":      hint.String(),
		"strategy":  s.String(),
	})
}
