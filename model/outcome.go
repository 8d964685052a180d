package model

// Pass outcome status constants
const (
	OutcomeCompleted     = "completed"
	OutcomeNotFound      = "not_found"
	OutcomeInputMissing  = "input_missing"
	OutcomeEmptyDocument = "empty_document"
	OutcomeNoRegulations = "no_regulations"
	OutcomeFailed        = "failed"
)

// PassOutcome summarizes one rectification pass. Each phase that ran
// records its artifact or error; the orchestrator never propagates a
// phase failure as a fault.
type PassOutcome struct {
	ContractID     string        `json:"contract_id"`
	Status         string        `json:"status"`
	Message        string        `json:"message"`
	Risks          []RiskFinding `json:"risks,omitempty"`
	SuggestionsPDF string        `json:"suggestions_pdf,omitempty"`
	RectifiedPDF   string        `json:"rectified_pdf,omitempty"`
	EmailSent      bool          `json:"email_sent"`
	EmailError     string        `json:"email_error,omitempty"`
}

// Rectified reports whether this pass produced a new rectified artifact.
func (o *PassOutcome) Rectified() bool {
	return o.RectifiedPDF != ""
}
