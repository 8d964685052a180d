package model

import (
	"time"
)

// ContractRecord tracks one registered contract document and its version
// history. Path is the original upload and is never reassigned or deleted;
// CurrentVersionPath points at the file used as input for the next
// rectification pass.
type ContractRecord struct {
	ID                 string     `json:"id"`
	Path               string     `json:"path"`
	CurrentVersionPath string     `json:"current_version_path"`
	RegisteredAt       time.Time  `json:"registered_at"`
	LastSuggestionsPDF string     `json:"last_suggestions_pdf,omitempty"`
	LastUpdated        *time.Time `json:"last_updated,omitempty"`
}

// HasHistory reports whether at least one rectification pass has completed.
func (r *ContractRecord) HasHistory() bool {
	return r.LastUpdated != nil
}

// RegulationRecord holds one tracked regulation. Records are overwritten
// wholesale on each fetch cycle; there is no partial update or deletion.
type RegulationRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	SnapshotPDF string    `json:"snapshot_pdf"`
	Text        string    `json:"text"`
}

// RiskFinding is one (severity, matched phrase) pair surfaced by keyword
// scanning of extracted contract text.
type RiskFinding struct {
	Severity string `json:"severity"`
	Phrase   string `json:"phrase"`
}

// Risk severity levels
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)
