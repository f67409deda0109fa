package interfaces

import (
	"context"

	"signup_automation/domain/entities"
)

// Archiver persists screenshots and diagnostic markup under the output directory
type Archiver interface {
	// Prepare creates the output directory if it does not exist
	Prepare() error

	// Capture takes a full-page screenshot and stores it under the next free name
	Capture(ctx context.Context, page Page) (entities.ScreenshotRecord, error)

	// WriteDebugMarkup overwrites the fixed debug dump file and returns its path
	WriteDebugMarkup(html string) (string, error)
}

// Journal saves the record of a finished run
type Journal interface {
	SaveReport(report *entities.RunReport) (string, error)
}
