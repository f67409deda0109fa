// Package tools is the catalog of browser operations exposed to the decision-maker.
// Every operation returns an entities.ToolResult; errors never cross this boundary.
package tools

import (
	"context"
	"errors"
	"runtime"
	"time"

	"signup_automation/application/resolver"
	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidArguments marks arguments that do not match a tool's schema
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrVerification marks a field that does not read back what was typed
	ErrVerification = errors.New("verification mismatch")
)

// Tool is one named operation
type Tool interface {
	Spec() entities.ToolSpec
	Execute(ctx context.Context, args Args) entities.ToolResult
}

// Timeouts bounds every wait a tool performs
type Timeouts struct {
	Navigation  time.Duration
	Action      time.Duration
	Settle      time.Duration
	DefaultWait time.Duration
	MaxWait     time.Duration
	TypeDelay   time.Duration
}

// DefaultTimeouts returns the bounds used when config leaves them unset
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Navigation:  30 * time.Second,
		Action:      5 * time.Second,
		Settle:      5 * time.Second,
		DefaultWait: 10 * time.Second,
		MaxWait:     120 * time.Second,
		TypeDelay:   50 * time.Millisecond,
	}
}

// Deps are shared by every tool. Page is the run's only session.
type Deps struct {
	Page     interfaces.Page
	Resolver *resolver.Resolver
	Archiver interfaces.Archiver
	Guard    interfaces.NavigationGuard
	Metrics  interfaces.Metrics
	Logger   *logrus.Logger
	Timeouts Timeouts
}

func (d Deps) log(tool string) *logrus.Entry {
	return d.Logger.WithFields(logrus.Fields{
		"component": "tools",
		"tool":      tool,
	})
}

// selectAllKey is the chord that selects a field's whole content
func selectAllKey() string {
	if runtime.GOOS == "darwin" {
		return "Meta+a"
	}
	return "Control+a"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
