package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
)

// riskKeywords maps severity to the fixed phrases scanned for in
// extracted contract text.
var riskKeywords = map[string][]string{
	model.SeverityHigh: {
		"no data protection",
		"no breach notification",
		"no confidentiality",
		"phi without safeguards",
	},
	model.SeverityMedium: {
		"limited liability",
		"data retention unspecified",
		"indemnity capped",
	},
	model.SeverityLow: {
		"dispute resolution",
		"notice period",
		"audit",
	},
}

// DetectRisks scans text case-insensitively against the fixed keyword
// tables. Pure function of its input: no external calls, no ordering
// guarantees beyond severity grouping.
func DetectRisks(text string) []model.RiskFinding {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var findings []model.RiskFinding
	for _, severity := range []string{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		for _, phrase := range riskKeywords[severity] {
			if strings.Contains(lower, phrase) {
				findings = append(findings, model.RiskFinding{Severity: severity, Phrase: phrase})
			}
		}
	}
	return findings
}

// SuggestionsForRegulation synthesizes the advisory block for one
// regulation: a title line, advisory lines gated by substring checks
// against the regulation and contract text, then one line per risk
// finding.
func SuggestionsForRegulation(reg *model.RegulationRecord, contractText string, risks []model.RiskFinding) string {
	title := reg.Title
	if title == "" {
		title = reg.ID
	}
	regLower := strings.ToLower(reg.Text)
	ctLower := strings.ToLower(contractText)

	parts := []string{fmt.Sprintf("Suggestions based on: %s", title)}

	if strings.Contains(regLower, "consent") || strings.Contains(ctLower, "consent") {
		parts = append(parts, "- Ensure explicit consent language (purpose, withdrawal).")
	}
	if strings.Contains(regLower, "breach") || strings.Contains(ctLower, "breach") {
		parts = append(parts, "- Add breach notification clause (timelines, responsibilities).")
	}
	if strings.Contains(regLower, "digital personal data") {
		parts = append(parts, "- Align with DPDP: define data principals and grievance redress.")
	}

	for _, f := range risks {
		parts = append(parts, fmt.Sprintf("- %s RISK: Address '%s'.", strings.ToUpper(f.Severity), f.Phrase))
	}

	return strings.Join(parts, "\n")
}

// BuildSuggestionsReport concatenates per-regulation suggestion blocks.
// Regulations are visited in sorted id order so the artifact is
// deterministic for a given manifest and contract text.
func BuildSuggestionsReport(regs map[string]*model.RegulationRecord, contractText string, risks []model.RiskFinding) string {
	ids := sortedRegulationIDs(regs)

	sections := make([]string, 0, len(ids))
	for _, id := range ids {
		block := SuggestionsForRegulation(regs[id], contractText, risks)
		sections = append(sections, fmt.Sprintf("### Regulation: %s\n%s\n", id, block))
	}
	return strings.Join(sections, "\n")
}

func sortedRegulationIDs(regs map[string]*model.RegulationRecord) []string {
	ids := make([]string, 0, len(regs))
	for id := range regs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
