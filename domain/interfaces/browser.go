package interfaces

import (
	"context"
	"time"

	"signup_automation/domain/entities"
)

// Element is a handle on the first match of a hint inside one document.
// Nothing is looked up until a method is called, so a handle for a missing
// element is valid and simply fails its waits.
type Element interface {
	// WaitVisible blocks until the element is visible or the timeout passes
	WaitVisible(timeout time.Duration) error

	// IsVisible checks visibility right now, without waiting
	IsVisible() (bool, error)

	Click(timeout time.Duration) error

	// Press sends a key or chord such as "Control+a" or "Backspace"
	Press(key string, timeout time.Duration) error

	// TypeSequentially types text one key at a time with delay between keys
	TypeSequentially(text string, delay, timeout time.Duration) error

	InputValue(timeout time.Duration) (string, error)
	InnerText(timeout time.Duration) (string, error)
}

// Document is one searchable context: the main page or an embedded frame
type Document interface {
	// Name identifies the document in messages ("main", "iframe[0]")
	Name() string

	// Find returns the first match in document order for the given interpretation
	Find(kind entities.HintKind, value string) Element

	// FindAll returns every match of a CSS selector in document order
	FindAll(selector string) ([]Element, error)

	// BodyHTML serializes the document body
	BodyHTML(timeout time.Duration) (string, error)
}

// Page is the single live browser tab shared by every tool
type Page interface {
	// Navigate loads url and waits for network idle
	Navigate(url string, timeout time.Duration) (entities.PageInfo, error)

	// WaitIdle waits for network idle, ignoring a timeout
	WaitIdle(timeout time.Duration)

	URL() string
	Title() (string, error)

	MainDocument() Document

	// FirstFrame returns the first embedded frame of the main document, if any
	FirstFrame() (Document, bool)

	Screenshot(fullPage bool) ([]byte, error)

	// Close releases the tab and the browser behind it
	Close() error
}

// Launcher starts the browser and opens the one page a run works with
type Launcher interface {
	Launch(ctx context.Context) (Page, error)
}
