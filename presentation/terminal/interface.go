package terminal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"signup_automation/application/agent"
	"signup_automation/application/tools"
	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"
	"signup_automation/infrastructure/ai"
	"signup_automation/infrastructure/browser"
	"signup_automation/infrastructure/config"
	"signup_automation/infrastructure/logging"
	"signup_automation/infrastructure/metrics"
	"signup_automation/infrastructure/security"
	"signup_automation/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ErrRunFailed is returned when the agent recorded an unrecoverable error
var ErrRunFailed = errors.New("run failed")

// MetricsFile is written into the output directory after every run
const MetricsFile = "metrics.prom"

// TerminalInterface holds the command-line flags shared by the commands
type TerminalInterface struct {
	cfgFile    string
	scriptFile string
	maxRounds  int
	headless   bool
}

// NewRootCommand - builds the CLI with the run and tools commands
func NewRootCommand() *cobra.Command {
	t := &TerminalInterface{}

	root := &cobra.Command{
		Use:           "signup-agent",
		Short:         "Browser agent that completes a website sign-up through tool calls",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&t.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Launch the browser and run the sign-up task",
		RunE:  t.runCommand,
	}
	run.Flags().StringVar(&t.scriptFile, "script", "", "replay a YAML script instead of asking OpenAI")
	run.Flags().IntVar(&t.maxRounds, "max-rounds", 0, "override agent.max_rounds")
	run.Flags().BoolVar(&t.headless, "headless", false, "run chromium without a window")

	list := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog with parameter schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintCatalog(cmd.OutOrStdout())
		},
	}

	root.AddCommand(run, list)
	return root
}

func (t *TerminalInterface) runCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(t.cfgFile)
	if err != nil {
		return err
	}
	if t.maxRounds > 0 {
		cfg.Agent.MaxRounds = t.maxRounds
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = t.headless
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, sink, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}
	defer sink.Close()

	decider, err := t.newDecisionMaker(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize decision-maker: %w", err)
	}

	guard, err := security.NewSecurityLayer(logger, cfg.Site.URL, cfg.Site.AllowedHosts...)
	if err != nil {
		return fmt.Errorf("failed to initialize navigation guard: %w", err)
	}

	launcher := browser.NewLauncher(browser.Options{
		Headless:       cfg.Browser.Headless,
		SlowMo:         cfg.Browser.SlowMo,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		UserAgent:      cfg.Browser.UserAgent,
		InstallDriver:  cfg.Browser.InstallDriver,
	}, logger)
	archiver := storage.NewScreenshotArchiver(cfg.OutputDir, logger)
	recorder := metrics.New()

	ag := agent.NewAgent(launcher, decider, archiver, logger, settingsFromConfig(cfg),
		agent.WithJournal(storage.NewFileJournal(cfg.OutputDir)),
		agent.WithGuard(guard),
		agent.WithMetrics(recorder),
	)

	report, runErr := ag.Run(cmd.Context())

	metricsPath := filepath.Join(cfg.OutputDir, MetricsFile)
	if err := recorder.WriteTextfile(metricsPath); err != nil {
		logger.WithError(err).Warn("failed to write metrics")
	}

	printReport(cmd.OutOrStdout(), report)

	if report.Status == entities.RunStatusFailed {
		if runErr != nil {
			return fmt.Errorf("%w: %v", ErrRunFailed, runErr)
		}
		return fmt.Errorf("%w: %s", ErrRunFailed, report.Error)
	}
	return nil
}

func (t *TerminalInterface) newDecisionMaker(cfg *config.Config, logger *logrus.Logger) (interfaces.DecisionMaker, error) {
	if t.scriptFile != "" {
		logger.WithField("script", t.scriptFile).Info("using scripted decision-maker")
		return ai.LoadScript(t.scriptFile)
	}
	return ai.NewOpenAIClient(ai.OpenAIOptions{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
	}, logger)
}

func settingsFromConfig(cfg *config.Config) agent.Settings {
	return agent.Settings{
		Task: agent.BuildSignupTask(agent.SignupDetails{
			SiteURL:   cfg.Site.URL,
			FirstName: cfg.Signup.FirstName,
			LastName:  cfg.Signup.LastName,
			Email:     cfg.Signup.Email,
			Username:  cfg.Signup.Username,
			Password:  cfg.Signup.Password,
		}),
		MaxRounds:   cfg.Agent.MaxRounds,
		RoundDelay:  cfg.Agent.RoundDelay,
		ResolveWait: cfg.Agent.ResolveTimeout,
		Timeouts: tools.Timeouts{
			Navigation:  cfg.Agent.NavigationTimeout,
			Action:      cfg.Agent.ActionTimeout,
			Settle:      cfg.Agent.SettleTimeout,
			DefaultWait: cfg.Agent.WaitTimeout,
			MaxWait:     cfg.Agent.MaxWaitTimeout,
			TypeDelay:   cfg.Agent.TypeDelay,
		},
	}
}

// PrintCatalog - writes every tool with its JSON schema
func PrintCatalog(w io.Writer) error {
	for _, spec := range tools.NewToolset(tools.Deps{}).Specs() {
		schema, err := json.MarshalIndent(spec.JSONSchema(), "  ", "  ")
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", spec.Name, err)
		}
		fmt.Fprintf(w, "%s\n  %s\n  %s\n\n", spec.Name, spec.Description, schema)
	}
	return nil
}

func printReport(w io.Writer, report *entities.RunReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run:    %s\n", report.RunID)
	fmt.Fprintf(w, "Status: %s after %d rounds\n", report.Status, report.Rounds)
	if report.Summary != "" {
		fmt.Fprintf(w, "Result: %s\n", report.Summary)
	}
	if report.Error != "" {
		fmt.Fprintf(w, "Error:  %s\n", report.Error)
	}
	if report.FinalScreenshot != "" {
		fmt.Fprintf(w, "Final screenshot: %s\n", report.FinalScreenshot)
	}
}
