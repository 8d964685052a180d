package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestContractRecordJSONFields(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	rec := &ContractRecord{
		ID:                 "nda_v1",
		Path:               "/storage/contracts/nda_v1.pdf",
		CurrentVersionPath: "/storage/contracts/nda_v1.pdf",
		RegisteredAt:       now,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}
	s := string(data)

	for _, field := range []string{`"id"`, `"path"`, `"current_version_path"`, `"registered_at"`} {
		if !strings.Contains(s, field) {
			t.Errorf("Expected field %s in JSON, got %s", field, s)
		}
	}
	// Optional fields are omitted until set
	if strings.Contains(s, "last_updated") {
		t.Errorf("Expected last_updated omitted for fresh record, got %s", s)
	}
	if strings.Contains(s, "last_suggestions_pdf") {
		t.Errorf("Expected last_suggestions_pdf omitted for fresh record, got %s", s)
	}
}

func TestContractRecordHasHistory(t *testing.T) {
	rec := &ContractRecord{ID: "c1"}
	if rec.HasHistory() {
		t.Error("Fresh record should have no history")
	}

	now := time.Now()
	rec.LastUpdated = &now
	if !rec.HasHistory() {
		t.Error("Record with last_updated should have history")
	}
}

func TestSeverityConstants(t *testing.T) {
	severities := []string{SeverityHigh, SeverityMedium, SeverityLow}
	expected := []string{"high", "medium", "low"}

	for i, s := range severities {
		if s != expected[i] {
			t.Errorf("Expected '%s', got '%s'", expected[i], s)
		}
	}
}

func TestPassOutcomeRectified(t *testing.T) {
	o := &PassOutcome{ContractID: "c1", Status: OutcomeCompleted}
	if o.Rectified() {
		t.Error("Outcome without rectified PDF should not report rectified")
	}
	o.RectifiedPDF = "/storage/versions/c1_RECTIFIED_20260115100000.pdf"
	if !o.Rectified() {
		t.Error("Outcome with rectified PDF should report rectified")
	}
}
