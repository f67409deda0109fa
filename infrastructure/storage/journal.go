package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"
)

type fileJournal struct {
	dir string
}

// NewFileJournal - creates a journal writing run_<id>.json files into dir
func NewFileJournal(dir string) interfaces.Journal {
	return &fileJournal{dir: dir}
}

// SaveReport - saves the run report with its full step history
func (j *fileJournal) SaveReport(report *entities.RunReport) (string, error) {
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}

	path := filepath.Join(j.dir, fmt.Sprintf("run_%s.json", report.RunID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}
	return path, nil
}

// LoadReport - reads a report written by SaveReport
func LoadReport(path string) (*entities.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var report entities.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
