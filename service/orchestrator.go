package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/pkg/logger"
)

// DocumentRectifier produces a rectified artifact from a contract file,
// or ("", nil) when it declines to rewrite.
type DocumentRectifier interface {
	Available() bool
	Rectify(ctx context.Context, inputPath string) (string, error)
}

// UpdateMailer delivers pass artifacts to the configured recipient.
type UpdateMailer interface {
	Available() bool
	SendComplianceUpdate(recipient, contractTitle, regulationName, version string, attachments []string) error
}

// ArtifactArchiver mirrors pass artifacts to remote storage. Archival is
// best-effort and never affects the pass outcome.
type ArtifactArchiver interface {
	Available() bool
	Archive(ctx context.Context, localPath string) error
}

const mailRegulationLabel = "GDPR + Indian Data Laws"

// Orchestrator runs rectification passes: extract, scan, suggest, and
// optionally rewrite and deliver. One pass per contract id runs at a
// time; concurrent calls for the same id serialize on the store lock.
type Orchestrator struct {
	contracts      *ContractStore
	regulations    *RegulationStore
	extractor      *Extractor
	renderer       *Renderer
	rectifier      DocumentRectifier
	mailer         UpdateMailer
	archiver       ArtifactArchiver
	suggestionsDir string
	mailRecipient  string
}

func NewOrchestrator(contracts *ContractStore, regulations *RegulationStore, extractor *Extractor, renderer *Renderer, rectifier DocumentRectifier, mailer UpdateMailer, archiver ArtifactArchiver, suggestionsDir, mailRecipient string) *Orchestrator {
	return &Orchestrator{
		contracts:      contracts,
		regulations:    regulations,
		extractor:      extractor,
		renderer:       renderer,
		rectifier:      rectifier,
		mailer:         mailer,
		archiver:       archiver,
		suggestionsDir: suggestionsDir,
		mailRecipient:  mailRecipient,
	}
}

// ApplyUpdates runs one rectification pass for the given contract.
// Every failure mode is reported through the outcome status rather than
// an error; callers always get a usable outcome to render.
func (o *Orchestrator) ApplyUpdates(ctx context.Context, contractID string, autoApply bool) *model.PassOutcome {
	unlock := o.contracts.Lock(contractID)
	defer unlock()

	log := logger.WithContext(ctx)
	out := &model.PassOutcome{ContractID: contractID}

	rec, ok := o.contracts.Get(contractID)
	if !ok {
		out.Status = model.OutcomeNotFound
		out.Message = fmt.Sprintf("Contract '%s' is not registered.", contractID)
		return out
	}

	input := rec.CurrentVersionPath
	if input == "" {
		input = rec.Path
	}
	if !fileExists(input) {
		out.Status = model.OutcomeInputMissing
		out.Message = fmt.Sprintf("Contract file missing on disk: %s", input)
		return out
	}

	text := o.extractor.ExtractText(input)
	if strings.TrimSpace(text) == "" {
		out.Status = model.OutcomeEmptyDocument
		out.Message = "No text could be extracted from the contract."
		return out
	}

	regs := o.regulations.Load()
	if len(regs) == 0 {
		out.Status = model.OutcomeNoRegulations
		out.Message = "No regulations registered; run a regulation refresh first."
		return out
	}

	out.Risks = DetectRisks(text)
	report := BuildSuggestionsReport(regs, text, out.Risks)

	suggestionsPDF, err := o.renderer.RenderArtifact(report, contractID+"_SUGGESTIONS", o.suggestionsDir)
	if err != nil {
		out.Status = model.OutcomeFailed
		out.Message = fmt.Sprintf("Failed to render suggestions: %v", err)
		return out
	}
	out.SuggestionsPDF = suggestionsPDF

	// Persist the suggestions pointer before any later phase can fail.
	rec.LastSuggestionsPDF = suggestionsPDF
	if err := o.contracts.Put(rec); err != nil {
		log.Warn("failed to persist suggestions pointer", "contract_id", contractID, "error", err)
	}

	var messages []string
	messages = append(messages, fmt.Sprintf("Generated suggestions for %d regulation(s).", len(regs)))

	if autoApply {
		messages = append(messages, o.runRectification(ctx, log, rec, input, out))
	}

	o.deliverArtifacts(log, rec, regs, out)
	o.archiveArtifacts(ctx, log, out)

	out.Status = model.OutcomeCompleted
	out.Message = strings.Join(compactStrings(messages), " ")
	return out
}

// runRectification attempts the AI rewrite and, on success, advances
// the current version pointer and removes the superseded intermediate
// artifact. The original upload is never deleted.
func (o *Orchestrator) runRectification(ctx context.Context, log *slog.Logger, rec *model.ContractRecord, input string, out *model.PassOutcome) string {
	if o.rectifier == nil || !o.rectifier.Available() {
		return "AI rectification unavailable; suggestions only."
	}

	rectified, err := o.rectifier.Rectify(ctx, input)
	if err != nil {
		log.Warn("rectification failed", "contract_id", rec.ID, "error", err)
		return fmt.Sprintf("AI rectification failed: %v.", err)
	}
	if rectified == "" {
		return "AI produced no rectified version; contract unchanged."
	}

	old := rec.CurrentVersionPath
	now := time.Now().UTC()
	rec.CurrentVersionPath = rectified
	rec.LastUpdated = &now
	if err := o.contracts.Put(rec); err != nil {
		log.Error("failed to persist rectified version pointer", "contract_id", rec.ID, "error", err)
		return fmt.Sprintf("Rectified artifact created but manifest update failed: %v.", err)
	}
	out.RectifiedPDF = rectified

	if old != "" && old != rec.Path && old != rectified && fileExists(old) {
		if err := os.Remove(old); err != nil {
			log.Warn("failed to remove superseded version", "contract_id", rec.ID, "path", old, "error", err)
		}
	}
	return "AI rectified version applied."
}

func (o *Orchestrator) deliverArtifacts(log *slog.Logger, rec *model.ContractRecord, regs map[string]*model.RegulationRecord, out *model.PassOutcome) {
	if o.mailer == nil || !o.mailer.Available() || o.mailRecipient == "" {
		return
	}

	attachments := compactStrings([]string{out.SuggestionsPDF, out.RectifiedPDF})
	if len(attachments) == 0 {
		return
	}

	version := latestRegulationVersion(regs)
	title := strings.TrimSuffix(filepath.Base(rec.Path), filepath.Ext(rec.Path))
	if err := o.mailer.SendComplianceUpdate(o.mailRecipient, title, mailRegulationLabel, version, attachments); err != nil {
		log.Warn("artifact email failed", "contract_id", rec.ID, "error", err)
		out.EmailError = err.Error()
		return
	}
	out.EmailSent = true
}

func (o *Orchestrator) archiveArtifacts(ctx context.Context, log *slog.Logger, out *model.PassOutcome) {
	if o.archiver == nil || !o.archiver.Available() {
		return
	}
	for _, path := range compactStrings([]string{out.SuggestionsPDF, out.RectifiedPDF}) {
		if err := o.archiver.Archive(ctx, path); err != nil {
			log.Warn("artifact archive failed", "path", path, "error", err)
		}
	}
}

func latestRegulationVersion(regs map[string]*model.RegulationRecord) string {
	var latest string
	for _, reg := range regs {
		if reg.Version > latest {
			latest = reg.Version
		}
	}
	return latest
}

func compactStrings(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
