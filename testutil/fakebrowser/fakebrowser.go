// Package fakebrowser is an in-memory stand-in for the playwright page used in tests.
// Documents hold a flat list of nodes; a node matches a selector when the selector is
// listed in Selectors, and matches text when its Text contains the hint.
package fakebrowser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"
)

// Node is one fake DOM element
type Node struct {
	Selectors []string
	Text      string
	Visible   bool
	Value     string
	Clicks    int
	OnClick   func()

	selected bool
}

// Doc is a fake document: the main page or a frame
type Doc struct {
	DocName string
	Nodes   []*Node
	HTML    string

	// PanicOnFind makes every lookup panic
	PanicOnFind bool
	// Finds counts lookups per interpretation
	Finds map[entities.HintKind]int
}

// NewDoc - creates a document with the given nodes
func NewDoc(name string, nodes ...*Node) *Doc {
	return &Doc{DocName: name, Nodes: nodes, Finds: make(map[entities.HintKind]int)}
}

func (d *Doc) Name() string { return d.DocName }

func (d *Doc) Find(kind entities.HintKind, value string) interfaces.Element {
	if d.PanicOnFind {
		panic("fake document lookup failed")
	}
	d.Finds[kind]++
	return &handle{doc: d, kind: kind, value: value}
}

func (d *Doc) FindAll(selector string) ([]interfaces.Element, error) {
	if d.PanicOnFind {
		panic("fake document lookup failed")
	}
	var out []interfaces.Element
	for _, n := range d.Nodes {
		if n.matches(entities.HintSelector, selector) {
			out = append(out, &handle{doc: d, node: n})
		}
	}
	return out, nil
}

func (d *Doc) BodyHTML(timeout time.Duration) (string, error) {
	return d.HTML, nil
}

func (n *Node) matches(kind entities.HintKind, value string) bool {
	switch kind {
	case entities.HintSelector:
		for _, s := range n.Selectors {
			if s == value {
				return true
			}
		}
		return false
	case entities.HintText:
		return value != "" && strings.Contains(n.Text, value)
	}
	return false
}

type handle struct {
	doc   *Doc
	kind  entities.HintKind
	value string
	node  *Node
}

func (h *handle) resolve() *Node {
	if h.node != nil {
		return h.node
	}
	for _, n := range h.doc.Nodes {
		if n.matches(h.kind, h.value) {
			return n
		}
	}
	return nil
}

func (h *handle) describe() string {
	if h.node != nil {
		return "node"
	}
	return fmt.Sprintf("%s %q in %s", h.kind, h.value, h.doc.DocName)
}

func (h *handle) WaitVisible(timeout time.Duration) error {
	n := h.resolve()
	if n == nil || !n.Visible {
		return fmt.Errorf("timeout %s exceeded waiting for %s", timeout, h.describe())
	}
	return nil
}

func (h *handle) IsVisible() (bool, error) {
	n := h.resolve()
	return n != nil && n.Visible, nil
}

func (h *handle) Click(timeout time.Duration) error {
	n := h.resolve()
	if n == nil || !n.Visible {
		return fmt.Errorf("timeout %s exceeded clicking %s", timeout, h.describe())
	}
	n.Clicks++
	if n.OnClick != nil {
		n.OnClick()
	}
	return nil
}

func (h *handle) Press(key string, timeout time.Duration) error {
	n := h.resolve()
	if n == nil {
		return fmt.Errorf("timeout %s exceeded pressing %s on %s", timeout, key, h.describe())
	}
	switch key {
	case "Control+a", "Meta+a":
		n.selected = true
	case "Backspace":
		if n.selected {
			n.Value = ""
			n.selected = false
		} else if len(n.Value) > 0 {
			r := []rune(n.Value)
			n.Value = string(r[:len(r)-1])
		}
	default:
		return fmt.Errorf("fake key %q not supported", key)
	}
	return nil
}

func (h *handle) TypeSequentially(text string, delay, timeout time.Duration) error {
	n := h.resolve()
	if n == nil {
		return fmt.Errorf("timeout %s exceeded typing into %s", timeout, h.describe())
	}
	if n.selected {
		n.Value = ""
		n.selected = false
	}
	n.Value += text
	return nil
}

func (h *handle) InputValue(timeout time.Duration) (string, error) {
	n := h.resolve()
	if n == nil {
		return "", fmt.Errorf("timeout %s exceeded reading %s", timeout, h.describe())
	}
	return n.Value, nil
}

func (h *handle) InnerText(timeout time.Duration) (string, error) {
	n := h.resolve()
	if n == nil {
		return "", fmt.Errorf("timeout %s exceeded reading %s", timeout, h.describe())
	}
	return n.Text, nil
}

// Page is a fake browser tab
type Page struct {
	Main   *Doc
	Frames []*Doc

	CurrentURL string
	PageTitle  string

	// Titles maps URLs to the title reported after navigating there
	Titles      map[string]string
	NavigateErr error
	OnNavigate  func(url string)
	Navigations []string

	PNG           []byte
	ScreenshotErr error
	Screenshots   int

	CloseErr error
	Closed   int
}

// NewPage - creates a page with an empty main document
func NewPage() *Page {
	return &Page{
		Main:       NewDoc("main"),
		CurrentURL: "about:blank",
		Titles:     make(map[string]string),
		PNG:        []byte("\x89PNG\r\n\x1a\nfake"),
	}
}

func (p *Page) Navigate(url string, timeout time.Duration) (entities.PageInfo, error) {
	p.Navigations = append(p.Navigations, url)
	if p.NavigateErr != nil {
		return entities.PageInfo{}, p.NavigateErr
	}
	p.CurrentURL = url
	p.PageTitle = p.Titles[url]
	if p.OnNavigate != nil {
		p.OnNavigate(url)
	}
	return entities.PageInfo{URL: p.CurrentURL, Title: p.PageTitle}, nil
}

func (p *Page) WaitIdle(timeout time.Duration) {}

func (p *Page) URL() string { return p.CurrentURL }

func (p *Page) Title() (string, error) { return p.PageTitle, nil }

func (p *Page) MainDocument() interfaces.Document { return p.Main }

func (p *Page) FirstFrame() (interfaces.Document, bool) {
	if len(p.Frames) == 0 {
		return nil, false
	}
	return p.Frames[0], true
}

func (p *Page) Screenshot(fullPage bool) ([]byte, error) {
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.Screenshots++
	return p.PNG, nil
}

func (p *Page) Close() error {
	p.Closed++
	return p.CloseErr
}

// ErrLaunch is returned by a Launcher configured to fail
var ErrLaunch = errors.New("fake launch failed")

// Launcher hands out the configured page
type Launcher struct {
	Page     *Page
	Err      error
	Launches int
}

func (l *Launcher) Launch(ctx context.Context) (interfaces.Page, error) {
	l.Launches++
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Page, nil
}
