package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLauncherDefaults(t *testing.T) {
	l := NewLauncher(Options{Headless: true}, logrus.New())
	assert.Equal(t, 1280, l.opts.ViewportWidth)
	assert.Equal(t, 720, l.opts.ViewportHeight)
	assert.Equal(t, defaultUserAgent, l.opts.UserAgent)

	l = NewLauncher(Options{ViewportWidth: 1920, ViewportHeight: 1080, UserAgent: "agent/1"}, logrus.New())
	assert.Equal(t, 1920, l.opts.ViewportWidth)
	assert.Equal(t, "agent/1", l.opts.UserAgent)
}

func TestLaunchHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := NewLauncher(Options{}, logrus.New()).Launch(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, page)
}

func TestIsClosedErr(t *testing.T) {
	assert.True(t, isClosedErr(errors.New("Target page, context or browser has been closed")))
	assert.True(t, isClosedErr(errors.New("target closed")))
	assert.False(t, isClosedErr(errors.New("timeout 5000ms exceeded")))
}

func TestMillis(t *testing.T) {
	assert.Equal(t, 2500.0, *millis(2500*time.Millisecond))
	assert.Equal(t, 0.0, *millis(0))
}
