package tools_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"signup_automation/application/resolver"
	"signup_automation/application/tools"
	"signup_automation/domain/entities"
	"signup_automation/infrastructure/metrics"
	"signup_automation/infrastructure/security"
	"signup_automation/infrastructure/storage"
	"signup_automation/testutil/fakebrowser"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteURL = "https://demo.example.com/"

type harness struct {
	page     *fakebrowser.Page
	toolset  *tools.Toolset
	dir      string
	recorder *metrics.Recorder
}

func newHarness(t *testing.T, page *fakebrowser.Page, tune ...func(*tools.Timeouts)) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	archiver := storage.NewScreenshotArchiver(dir, logger)
	require.NoError(t, archiver.Prepare())

	guard, err := security.NewSecurityLayer(logger, siteURL)
	require.NoError(t, err)

	recorder := metrics.New()
	timeouts := tools.DefaultTimeouts()
	timeouts.DefaultWait = 200 * time.Millisecond
	timeouts.TypeDelay = 0
	for _, fn := range tune {
		fn(&timeouts)
	}

	res := resolver.New(page, logger,
		resolver.WithWait(20*time.Millisecond),
		resolver.WithPollInterval(10*time.Millisecond),
		resolver.WithArchiver(archiver),
		resolver.WithMetrics(recorder),
	)

	return &harness{
		page: page,
		dir:  dir,
		toolset: tools.NewToolset(tools.Deps{
			Page:     page,
			Resolver: res,
			Archiver: archiver,
			Guard:    guard,
			Metrics:  recorder,
			Logger:   logger,
			Timeouts: timeouts,
		}),
		recorder: recorder,
	}
}

func (h *harness) call(t *testing.T, tool string, args interface{}) entities.ToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return h.toolset.Invoke(context.Background(), entities.ToolInvocation{Tool: tool, Arguments: raw})
}

type obj map[string]interface{}

func TestCatalog(t *testing.T) {
	h := newHarness(t, fakebrowser.NewPage())

	var names []string
	for _, spec := range h.toolset.Specs() {
		names = append(names, spec.Name)
	}
	assert.Equal(t, []string{
		"navigate", "click", "type_text", "wait_for_element",
		"find_elements", "take_screenshot", "dump_iframe",
	}, names)
}

func TestInvokeUnknownTool(t *testing.T) {
	h := newHarness(t, fakebrowser.NewPage())

	result := h.call(t, "hover", obj{"selector": "#a"})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, `unknown tool "hover"`)
	assert.Contains(t, result.Message, "type_text")
}

func TestInvokeInvalidArguments(t *testing.T) {
	h := newHarness(t, fakebrowser.NewPage())

	result := h.call(t, "click", obj{"by": "css"})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, `"selector" is required`)
}

func TestInvokeCanceledContext(t *testing.T) {
	h := newHarness(t, fakebrowser.NewPage())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := h.toolset.Invoke(ctx, entities.ToolInvocation{Tool: "take_screenshot"})
	assert.False(t, result.OK)
	assert.Zero(t, h.page.Screenshots)
}

type panickingTool struct{}

func (panickingTool) Spec() entities.ToolSpec { return entities.ToolSpec{Name: "explode"} }

func (panickingTool) Execute(context.Context, tools.Args) entities.ToolResult {
	panic("boom")
}

func TestInvokeRecoversToolPanic(t *testing.T) {
	h := newHarness(t, fakebrowser.NewPage())
	h.toolset.Register(panickingTool{})

	var result entities.ToolResult
	assert.NotPanics(t, func() {
		result = h.call(t, "explode", obj{})
	})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "boom")

	assert.Equal(t, 1.0, testutil.ToFloat64(h.recorder.ToolInvocations("explode", false)))
}

func TestNavigate(t *testing.T) {
	page := fakebrowser.NewPage()
	page.Titles[siteURL] = "Demo Shop"
	h := newHarness(t, page)

	result := h.call(t, "navigate", obj{"url": siteURL})
	require.True(t, result.OK, result.Message)
	assert.Contains(t, result.Message, "Demo Shop")
	assert.Equal(t, siteURL, page.URL())
}

func TestNavigateRefusesOtherSites(t *testing.T) {
	page := fakebrowser.NewPage()
	h := newHarness(t, page)

	result := h.call(t, "navigate", obj{"url": "https://evil.example.org/login"})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "refused")
	assert.Empty(t, page.Navigations)
}

func TestNavigateFailure(t *testing.T) {
	page := fakebrowser.NewPage()
	page.NavigateErr = assert.AnError
	h := newHarness(t, page)

	result := h.call(t, "navigate", obj{"url": siteURL})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "timeout 30s")
}

func TestClickByText(t *testing.T) {
	page := fakebrowser.NewPage()
	link := &fakebrowser.Node{Text: "Sign Up", Visible: true}
	page.Main = fakebrowser.NewDoc("main", link)
	h := newHarness(t, page)

	result := h.call(t, "click", obj{"selector": "Sign Up"})
	require.True(t, result.OK, result.Message)
	assert.Equal(t, 1, link.Clicks)
	assert.Contains(t, result.Message, "matched as text in main")

	assert.Equal(t, 1.0, testutil.ToFloat64(h.recorder.Resolutions("main/text")))
}

func TestClickNotFound(t *testing.T) {
	h := newHarness(t, fakebrowser.NewPage())

	result := h.call(t, "click", obj{"selector": "#nowhere", "by": "css"})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "no visible element")
}

func TestTypeTextReplacesExistingValue(t *testing.T) {
	page := fakebrowser.NewPage()
	field := &fakebrowser.Node{Selectors: []string{"#email"}, Visible: true, Value: "prefilled@old.example"}
	page.Main = fakebrowser.NewDoc("main", field)
	h := newHarness(t, page)

	result := h.call(t, "type_text", obj{"selector": "#email", "text": "jane@example.com"})
	require.True(t, result.OK, result.Message)
	assert.Equal(t, "jane@example.com", field.Value)
	assert.Contains(t, result.Message, "typed 16 characters")
}

func TestTypeTextEmptyClearsField(t *testing.T) {
	page := fakebrowser.NewPage()
	field := &fakebrowser.Node{Selectors: []string{"#name"}, Visible: true, Value: "old"}
	page.Main = fakebrowser.NewDoc("main", field)
	h := newHarness(t, page)

	result := h.call(t, "type_text", obj{"selector": "#name", "text": ""})
	require.True(t, result.OK, result.Message)
	assert.Empty(t, field.Value)
}

func TestTypeTextTwoPasswordFields(t *testing.T) {
	page := fakebrowser.NewPage()
	first := &fakebrowser.Node{Selectors: []string{`input[type="password"]`}, Visible: true}
	second := &fakebrowser.Node{
		Selectors: []string{`input[type="password"]`, `input[type="password"] >> nth=1`},
		Visible:   true,
	}
	page.Frames = []*fakebrowser.Doc{fakebrowser.NewDoc("iframe[0]", first, second)}
	h := newHarness(t, page)

	result := h.call(t, "type_text", obj{"selector": `input[type="password"]`, "text": "S3cret!pass"})
	require.True(t, result.OK, result.Message)
	firstClicks := first.Clicks

	result = h.call(t, "type_text", obj{"selector": `input[type="password"] >> nth=1`, "text": "Confirm!pass"})
	require.True(t, result.OK, result.Message)

	assert.Equal(t, "S3cret!pass", first.Value)
	assert.Equal(t, firstClicks, first.Clicks)
	assert.Equal(t, "Confirm!pass", second.Value)
	assert.Equal(t, 1, second.Clicks)
}

func TestWaitForElement(t *testing.T) {
	page := fakebrowser.NewPage()
	page.Frames = []*fakebrowser.Doc{fakebrowser.NewDoc("iframe[0]",
		&fakebrowser.Node{Selectors: []string{"form#register"}, Visible: true},
	)}
	h := newHarness(t, page)

	result := h.call(t, "wait_for_element", obj{"selector": "form#register", "timeout": nil})
	require.True(t, result.OK, result.Message)
	assert.Contains(t, result.Message, "iframe[0]")
}

func TestWaitForElementTimeouts(t *testing.T) {
	tests := []struct {
		name    string
		timeout interface{}
		want    string
	}{
		{name: "zero", timeout: 0, want: "timeout must be positive"},
		{name: "negative", timeout: -3, want: "timeout must be positive"},
		{name: "short", timeout: 0.05, want: "within 50ms"},
		{name: "default", timeout: nil, want: "within 200ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, fakebrowser.NewPage())

			start := time.Now()
			result := h.call(t, "wait_for_element", obj{"selector": "#late", "timeout": tt.timeout})
			assert.False(t, result.OK)
			assert.Contains(t, result.Message, tt.want)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestWaitForElementClampsToMaxWait(t *testing.T) {
	const maxWait = 300 * time.Millisecond

	for _, secs := range []float64{100, 1e10, 1e300} {
		t.Run(fmt.Sprint(secs), func(t *testing.T) {
			h := newHarness(t, fakebrowser.NewPage(), func(tm *tools.Timeouts) {
				tm.MaxWait = maxWait
			})

			start := time.Now()
			result := h.call(t, "wait_for_element", obj{"selector": "#never", "timeout": secs})
			elapsed := time.Since(start)

			assert.False(t, result.OK)
			assert.Contains(t, result.Message, "within 300ms")
			assert.GreaterOrEqual(t, elapsed, maxWait)
			assert.Less(t, elapsed, 2*time.Second)
		})
	}
}

func TestFindElementsListsFirstFive(t *testing.T) {
	page := fakebrowser.NewPage()
	var nodes []*fakebrowser.Node
	for i := 0; i < 7; i++ {
		nodes = append(nodes, &fakebrowser.Node{Selectors: []string{"li"}, Text: "item  " + string(rune('A'+i)), Visible: i != 1})
	}
	page.Main = fakebrowser.NewDoc("main", nodes...)
	h := newHarness(t, page)

	result := h.call(t, "find_elements", obj{"selector": "li"})
	require.True(t, result.OK, result.Message)
	assert.Contains(t, result.Message, `found 7 elements matching "li" in main`)
	assert.Contains(t, result.Message, `[0] visible text="item A"`)
	assert.Contains(t, result.Message, `[1] hidden text="item B"`)
	assert.NotContains(t, result.Message, "[5]")
	assert.Contains(t, result.Message, "2 more not listed")
}

func TestFindElementsZeroMatchesDumpsFrame(t *testing.T) {
	page := fakebrowser.NewPage()
	frame := fakebrowser.NewDoc("iframe[0]")
	frame.HTML = "<div class=\"spinner\"></div>"
	page.Frames = []*fakebrowser.Doc{frame}
	h := newHarness(t, page)

	result := h.call(t, "find_elements", obj{"selector": "input"})
	require.True(t, result.OK, result.Message)
	assert.Contains(t, result.Message, "found 0 elements")

	dump := filepath.Join(h.dir, storage.DebugMarkupFile)
	assert.Contains(t, result.Message, dump)
	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Equal(t, frame.HTML, string(data))
}

func TestTakeScreenshot(t *testing.T) {
	page := fakebrowser.NewPage()
	h := newHarness(t, page)

	first := h.call(t, "take_screenshot", obj{})
	second := h.call(t, "take_screenshot", nil)
	require.True(t, first.OK, first.Message)
	require.True(t, second.OK, second.Message)
	assert.NotEqual(t, first.Message, second.Message)

	files, err := filepath.Glob(filepath.Join(h.dir, "step_*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestTakeScreenshotFailure(t *testing.T) {
	page := fakebrowser.NewPage()
	page.ScreenshotErr = assert.AnError
	h := newHarness(t, page)

	result := h.call(t, "take_screenshot", obj{})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "screenshot failed")
}

func TestDumpIframe(t *testing.T) {
	page := fakebrowser.NewPage()
	h := newHarness(t, page)

	result := h.call(t, "dump_iframe", obj{})
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "no iframe")

	frame := fakebrowser.NewDoc("iframe[0]")
	frame.HTML = "<form></form>"
	page.Frames = []*fakebrowser.Doc{frame}

	result = h.call(t, "dump_iframe", obj{})
	require.True(t, result.OK, result.Message)
	assert.True(t, strings.HasSuffix(result.Message, storage.DebugMarkupFile))
}

// signupSite builds a page whose sidebar "Sign Up" link injects the
// registration iframe, like a widget that renders the form on demand.
func signupSite(page *fakebrowser.Page, inputs ...*fakebrowser.Node) *fakebrowser.Node {
	frame := fakebrowser.NewDoc("iframe[0]", inputs...)
	frame.HTML = "<form id=\"register\"></form>"

	link := &fakebrowser.Node{Selectors: []string{"aside a"}, Text: "Sign Up", Visible: true}
	link.OnClick = func() { page.Frames = []*fakebrowser.Doc{frame} }
	page.OnNavigate = func(string) {
		page.Main = fakebrowser.NewDoc("main",
			&fakebrowser.Node{Selectors: []string{"aside"}, Text: "Home Shop Account", Visible: true},
			link,
		)
	}
	return link
}

func TestSignUpScenario(t *testing.T) {
	page := fakebrowser.NewPage()
	email := &fakebrowser.Node{Selectors: []string{"input", "input[name=\"email\"]"}, Visible: true}
	password := &fakebrowser.Node{Selectors: []string{"input", `input[type="password"]`}, Visible: true}
	submit := &fakebrowser.Node{Selectors: []string{"button[type=submit]"}, Text: "Create account", Visible: true}
	link := signupSite(page, email, password, submit)
	h := newHarness(t, page)

	steps := []struct {
		tool string
		args obj
	}{
		{"navigate", obj{"url": siteURL}},
		{"click", obj{"selector": "Sign Up", "by": "text"}},
		{"wait_for_element", obj{"selector": "input[name=\"email\"]", "timeout": 1}},
		{"find_elements", obj{"selector": "input"}},
		{"type_text", obj{"selector": "input[name=\"email\"]", "text": "jane@example.com"}},
		{"type_text", obj{"selector": `input[type="password"]`, "text": "S3cret!pass"}},
		{"take_screenshot", obj{}},
		{"click", obj{"selector": "Create account"}},
	}

	var results []entities.ToolResult
	for _, step := range steps {
		result := h.call(t, step.tool, step.args)
		require.True(t, result.OK, "%s: %s", step.tool, result.Message)
		results = append(results, result)
	}

	assert.Equal(t, 1, link.Clicks)
	assert.Contains(t, results[1].Message, "matched as text in main")
	assert.Contains(t, results[3].Message, `found 2 elements matching "input" in iframe[0]`)
	assert.Equal(t, "jane@example.com", email.Value)
	assert.Equal(t, "S3cret!pass", password.Value)
	assert.Equal(t, 1, submit.Clicks)
	assert.Contains(t, results[7].Message, "matched as text in iframe[0]")
}

func TestSignUpScenarioWithEmptyFrame(t *testing.T) {
	page := fakebrowser.NewPage()
	signupSite(page)
	h := newHarness(t, page)

	require.True(t, h.call(t, "navigate", obj{"url": siteURL}).OK)
	require.True(t, h.call(t, "click", obj{"selector": "Sign Up"}).OK)

	result := h.call(t, "find_elements", obj{"selector": "input"})
	require.True(t, result.OK, result.Message)
	assert.Contains(t, result.Message, "found 0 elements")
	assert.FileExists(t, filepath.Join(h.dir, storage.DebugMarkupFile))
}
