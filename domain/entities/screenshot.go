package entities

import "time"

// ScreenshotRecord is written once per capture and never modified afterwards.
type ScreenshotRecord struct {
	Seq     int       `json:"seq"`
	Path    string    `json:"path"`
	URL     string    `json:"url,omitempty"`
	TakenAt time.Time `json:"taken_at"`
}
