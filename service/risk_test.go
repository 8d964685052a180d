package service

import (
	"strings"
	"testing"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
)

func TestDetectRisksCaseInsensitive(t *testing.T) {
	findings := DetectRisks("This contract has No Data Protection guarantees.")

	found := false
	for _, f := range findings {
		if f.Severity == model.SeverityHigh && f.Phrase == "no data protection" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected (high, 'no data protection') finding, got %+v", findings)
	}
}

func TestDetectRisksDeterministic(t *testing.T) {
	text := "Limited Liability applies. Audit rights and notice period are defined. NO BREACH NOTIFICATION."

	first := DetectRisks(text)
	second := DetectRisks(text)

	if len(first) != len(second) {
		t.Fatalf("Detection not deterministic: %d vs %d findings", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Finding %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}

	want := map[model.RiskFinding]bool{
		{Severity: "high", Phrase: "no breach notification"}: true,
		{Severity: "medium", Phrase: "limited liability"}:    true,
		{Severity: "low", Phrase: "audit"}:                   true,
		{Severity: "low", Phrase: "notice period"}:           true,
	}
	if len(first) != len(want) {
		t.Errorf("Expected %d findings, got %d: %+v", len(want), len(first), first)
	}
	for _, f := range first {
		if !want[f] {
			t.Errorf("Unexpected finding: %+v", f)
		}
	}
}

func TestDetectRisksEmptyText(t *testing.T) {
	if findings := DetectRisks(""); len(findings) != 0 {
		t.Errorf("Expected no findings for empty text, got %+v", findings)
	}
}

func TestSuggestionsForRegulation(t *testing.T) {
	reg := &model.RegulationRecord{
		ID:    "EU_GDPR",
		Title: "EU General Data Protection Regulation (GDPR)",
		Text:  "Processing requires consent. Breach must be notified within 72 hours.",
	}
	risks := []model.RiskFinding{{Severity: "high", Phrase: "no data protection"}}

	block := SuggestionsForRegulation(reg, "A plain services contract.", risks)

	if !strings.HasPrefix(block, "Suggestions based on: EU General Data Protection Regulation (GDPR)") {
		t.Errorf("Unexpected title line: %q", block)
	}
	if !strings.Contains(block, "explicit consent language") {
		t.Error("Expected consent advisory (gated on regulation text)")
	}
	if !strings.Contains(block, "breach notification clause") {
		t.Error("Expected breach advisory (gated on regulation text)")
	}
	if strings.Contains(block, "DPDP") {
		t.Error("DPDP advisory should not fire without 'digital personal data' in regulation text")
	}
	if !strings.Contains(block, "- HIGH RISK: Address 'no data protection'.") {
		t.Errorf("Expected risk line, got %q", block)
	}
}

func TestSuggestionsForRegulationDPDPGate(t *testing.T) {
	reg := &model.RegulationRecord{
		ID:   "IN_DPDP",
		Text: "This act governs digital personal data processing.",
	}

	block := SuggestionsForRegulation(reg, "", nil)
	if !strings.Contains(block, "data principals and grievance redress") {
		t.Error("Expected DPDP advisory when regulation text mentions digital personal data")
	}
	// Falls back to id when title is empty
	if !strings.Contains(block, "Suggestions based on: IN_DPDP") {
		t.Errorf("Expected id fallback in title line, got %q", block)
	}
}

func TestBuildSuggestionsReportOrderedAndComplete(t *testing.T) {
	regs := map[string]*model.RegulationRecord{
		"IN_SPDI_RULES": {ID: "IN_SPDI_RULES", Title: "SPDI Rules"},
		"EU_GDPR":       {ID: "EU_GDPR", Title: "GDPR", Text: "consent"},
		"IN_DPDP":       {ID: "IN_DPDP", Title: "DPDP"},
	}

	report := BuildSuggestionsReport(regs, "contract text", nil)

	gdpr := strings.Index(report, "### Regulation: EU_GDPR")
	dpdp := strings.Index(report, "### Regulation: IN_DPDP")
	spdi := strings.Index(report, "### Regulation: IN_SPDI_RULES")

	if gdpr == -1 || dpdp == -1 || spdi == -1 {
		t.Fatalf("Expected a section per regulation, got %q", report)
	}
	if !(gdpr < dpdp && dpdp < spdi) {
		t.Error("Expected sections in sorted regulation-id order")
	}

	// Deterministic across calls
	if report != BuildSuggestionsReport(regs, "contract text", nil) {
		t.Error("Report generation should be deterministic")
	}
}
