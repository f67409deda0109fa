package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signup_automation/application/resolver"
	"signup_automation/application/tools"
	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMaxRounds caps decision rounds when no limit is configured
const DefaultMaxRounds = 25

// Settings tune one run
type Settings struct {
	Task        string
	MaxRounds   int
	RoundDelay  time.Duration
	ResolveWait time.Duration
	Timeouts    tools.Timeouts
	RunID       string
}

// Agent owns the page session for one run and drives the decision loop:
// initialize, run rounds until done or the cap, then finalize on every path.
type Agent struct {
	launcher interfaces.Launcher
	ai       interfaces.DecisionMaker
	archiver interfaces.Archiver
	journal  interfaces.Journal
	guard    interfaces.NavigationGuard
	metrics  interfaces.Metrics
	logger   *logrus.Logger
	settings Settings
}

// Option configures optional collaborators
type Option func(*Agent)

func WithJournal(j interfaces.Journal) Option {
	return func(a *Agent) { a.journal = j }
}

func WithGuard(g interfaces.NavigationGuard) Option {
	return func(a *Agent) { a.guard = g }
}

func WithMetrics(m interfaces.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// NewAgent - creates new agent instance
func NewAgent(launcher interfaces.Launcher, ai interfaces.DecisionMaker, archiver interfaces.Archiver, logger *logrus.Logger, settings Settings, opts ...Option) *Agent {
	if settings.MaxRounds <= 0 {
		settings.MaxRounds = DefaultMaxRounds
	}
	if settings.Timeouts == (tools.Timeouts{}) {
		settings.Timeouts = tools.DefaultTimeouts()
	}
	if settings.RunID == "" {
		settings.RunID = uuid.NewString()
	}

	a := &Agent{
		launcher: launcher,
		ai:       ai,
		archiver: archiver,
		logger:   logger,
		settings: settings,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the task. The returned report is never nil; the error is set
// only for failures that ended the run abnormally.
func (a *Agent) Run(ctx context.Context) (report *entities.RunReport, err error) {
	report = &entities.RunReport{
		RunID:     a.settings.RunID,
		StartedAt: time.Now(),
	}
	log := a.logger.WithFields(logrus.Fields{"component": "agent", "run_id": report.RunID})

	log.WithField("max_rounds", a.settings.MaxRounds).Info("initializing")
	page, err := a.launcher.Launch(ctx)
	if err != nil {
		err = fmt.Errorf("failed to start browser: %w", err)
		a.fail(report, err)
		a.finish(report)
		return report, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if cerr := page.Close(); cerr != nil {
				log.WithError(cerr).Warn("failed to release browser")
				return
			}
			log.Info("browser released")
		})
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("agent panic: %v", p)
			a.fail(report, err)
		}
		a.finalize(ctx, page, report, release)
		a.finish(report)
	}()

	if err := a.archiver.Prepare(); err != nil {
		err = fmt.Errorf("failed to prepare output: %w", err)
		a.fail(report, err)
		return report, err
	}

	res := resolver.New(page, a.logger,
		resolver.WithWait(a.settings.ResolveWait),
		resolver.WithArchiver(a.archiver),
		resolver.WithMetrics(a.metrics),
	)
	toolset := tools.NewToolset(tools.Deps{
		Page:     page,
		Resolver: res,
		Archiver: a.archiver,
		Guard:    a.guard,
		Metrics:  a.metrics,
		Logger:   a.logger,
		Timeouts: a.settings.Timeouts,
	})

	log.Info("running")
	if err := a.loop(ctx, toolset, report); err != nil {
		return report, err
	}
	return report, nil
}

func (a *Agent) loop(ctx context.Context, toolset *tools.Toolset, report *entities.RunReport) error {
	state := entities.TaskState{
		Task:  a.settings.Task,
		Tools: toolset.Specs(),
	}

	for round := 1; round <= a.settings.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			report.Status = entities.RunStatusCanceled
			report.Error = err.Error()
			return fmt.Errorf("task canceled: %w", err)
		}

		state.Round = round
		decision, err := a.decide(ctx, state)
		if err != nil {
			if ctx.Err() != nil {
				report.Status = entities.RunStatusCanceled
				report.Error = ctx.Err().Error()
				return fmt.Errorf("task canceled: %w", ctx.Err())
			}
			err = fmt.Errorf("round %d: failed to decide next action: %w", round, err)
			a.fail(report, err)
			return err
		}

		report.Rounds = round
		if a.metrics != nil {
			a.metrics.ObserveRound()
		}

		entry := a.logger.WithFields(logrus.Fields{"component": "agent", "round": round})
		if decision.Done || decision.Call == nil {
			report.Status = entities.RunStatusCompleted
			report.Summary = decision.Summary
			entry.WithField("summary", decision.Summary).Info("agent declared completion")
			return nil
		}

		call := *decision.Call
		entry.WithFields(logrus.Fields{"tool": call.Tool, "reasoning": decision.Reasoning}).Info("dispatching")

		start := time.Now()
		result := toolset.Invoke(ctx, call)
		step := entities.Step{
			Round:     round,
			Call:      call,
			Reasoning: decision.Reasoning,
			Result:    result,
			Duration:  time.Since(start),
		}
		state.History = append(state.History, step)
		report.History = append(report.History, step)

		if a.settings.RoundDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.settings.RoundDelay):
			}
		}
	}

	report.Status = entities.RunStatusExhausted
	a.logger.WithField("component", "agent").Infof("round cap of %d reached", a.settings.MaxRounds)
	return nil
}

// decide shields the loop from a panicking decision-maker
func (a *Agent) decide(ctx context.Context, state entities.TaskState) (d entities.Decision, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decision-maker panic: %v", p)
		}
	}()
	return a.ai.Decide(ctx, state)
}

// finalize takes one last screenshot, best effort, then releases the page
func (a *Agent) finalize(ctx context.Context, page interfaces.Page, report *entities.RunReport, release func()) {
	log := a.logger.WithFields(logrus.Fields{"component": "agent", "run_id": report.RunID})
	log.Info("finalizing")

	func() {
		defer func() {
			if p := recover(); p != nil {
				log.Warnf("final screenshot panicked: %v", p)
			}
		}()
		rec, err := a.archiver.Capture(context.WithoutCancel(ctx), page)
		if err != nil {
			log.WithError(err).Warn("final screenshot failed")
			return
		}
		report.FinalScreenshot = rec.Path
	}()

	release()
}

func (a *Agent) finish(report *entities.RunReport) {
	report.FinishedAt = time.Now()
	log := a.logger.WithFields(logrus.Fields{
		"component": "agent",
		"run_id":    report.RunID,
		"status":    report.Status,
		"rounds":    report.Rounds,
	})

	if a.journal != nil {
		if path, err := a.journal.SaveReport(report); err != nil {
			log.WithError(err).Warn("failed to save run journal")
		} else {
			log = log.WithField("journal", path)
		}
	}

	if report.Status == entities.RunStatusFailed {
		log.Error(report.Error)
		return
	}
	log.Info("run finished")
}

func (a *Agent) fail(report *entities.RunReport, err error) {
	report.Status = entities.RunStatusFailed
	report.Error = err.Error()
}
