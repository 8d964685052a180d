package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
)

// Default regulation sources
const (
	gdprSourceURL = "https://eur-lex.europa.eu/legal-content/EN/TXT/PDF/?uri=CELEX:32016R0679"
	dpdpSourceURL = "https://prsindia.org/files/bills_acts/acts_parliament/2023/Digital_Personal_Data_Protection_Act_2023.pdf"
	spdiSourceURL = "https://www.meity.gov.in/content/rules-sensitive-personal-data-or-information"
)

// Fallback summaries used when a source cannot be fetched or parsed.
const (
	gdprFallbackText = "General Data Protection Regulation (EU) 2016/679 - Summary text."
	dpdpFallbackText = "The Digital Personal Data Protection Act, 2023 - Summary text."
	spdiFallbackText = "SPDI Rules under Indian IT Act - Summary text."
)

const spdiTextCap = 5000

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// regulationSource describes one tracked regulation and how to obtain
// its text.
type regulationSource struct {
	id       string
	title    string
	source   string
	url      string
	isPDF    bool
	fallback string
}

// RegulationRegistrar fetches the tracked regulatory texts, builds a
// combined snapshot artifact, and replaces the regulation manifest
// wholesale. A failed individual fetch degrades to its fallback summary
// rather than aborting the batch.
type RegulationRegistrar struct {
	store        *RegulationStore
	extractor    *Extractor
	renderer     *Renderer
	snapshotsDir string
	downloadDir  string
	httpClient   *http.Client

	sources []regulationSource
}

func NewRegulationRegistrar(store *RegulationStore, extractor *Extractor, renderer *Renderer, snapshotsDir, downloadDir string, fetchTimeout time.Duration) *RegulationRegistrar {
	return &RegulationRegistrar{
		store:        store,
		extractor:    extractor,
		renderer:     renderer,
		snapshotsDir: snapshotsDir,
		downloadDir:  downloadDir,
		httpClient:   &http.Client{Timeout: fetchTimeout},
		sources: []regulationSource{
			{
				id:       "EU_GDPR",
				title:    "EU General Data Protection Regulation (GDPR)",
				source:   "EUR-Lex",
				url:      gdprSourceURL,
				isPDF:    true,
				fallback: gdprFallbackText,
			},
			{
				id:       "IN_DPDP",
				title:    "Digital Personal Data Protection Act, 2023 (India)",
				source:   "PRS India",
				url:      dpdpSourceURL,
				isPDF:    true,
				fallback: dpdpFallbackText,
			},
			{
				id:       "IN_SPDI_RULES",
				title:    "IT (Reasonable Security Practices) Rules, 2011",
				source:   "MeitY",
				url:      spdiSourceURL,
				isPDF:    false,
				fallback: spdiFallbackText,
			},
		},
	}
}

// FetchAll retrieves every tracked regulation. All records in one batch
// share a single timestamp version token.
func (r *RegulationRegistrar) FetchAll(ctx context.Context) []*model.RegulationRecord {
	version := utcTimestamp()

	records := make([]*model.RegulationRecord, 0, len(r.sources))
	for _, src := range r.sources {
		text := r.fetchText(ctx, src)
		if strings.TrimSpace(text) == "" {
			text = src.fallback
		}
		records = append(records, &model.RegulationRecord{
			ID:      src.id,
			Title:   src.title,
			Source:  src.source,
			Version: version,
			Text:    text,
		})
	}
	return records
}

func (r *RegulationRegistrar) fetchText(ctx context.Context, src regulationSource) string {
	if src.isPDF {
		local := filepath.Join(r.downloadDir, src.id+"_source.pdf")
		if err := r.downloadFile(ctx, src.url, local); err != nil {
			slog.Warn("regulation download failed", "regulation", src.id, "error", err)
			return ""
		}
		return r.extractor.ExtractText(local)
	}

	html, err := r.fetchBody(ctx, src.url)
	if err != nil {
		slog.Warn("regulation fetch failed", "regulation", src.id, "error", err)
		return ""
	}
	clean := htmlTagPattern.ReplaceAllString(html, " ")
	clean = whitespacePattern.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return ""
	}
	if runes := []rune(clean); len(runes) > spdiTextCap {
		clean = string(runes[:spdiTextCap])
	}
	return "SPDI Rules 2011 Summary:\n" + clean
}

func (r *RegulationRegistrar) fetchBody(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (r *RegulationRegistrar) downloadFile(ctx context.Context, url, dest string) error {
	body, err := r.fetchBody(ctx, url)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(body), 0o644)
}

// RegisterAll fetches all regulations, renders one combined snapshot
// artifact referenced by every record in the batch, and overwrites the
// manifest wholesale. Returns one log line per updated regulation.
func (r *RegulationRegistrar) RegisterAll(ctx context.Context) ([]string, error) {
	fetched := r.FetchAll(ctx)
	if len(fetched) == 0 {
		return []string{"No regulations fetched."}, nil
	}

	snapshot, err := r.buildSnapshot(fetched)
	if err != nil {
		slog.Warn("snapshot render failed", "error", err)
	}

	existing := r.store.Load()
	now := time.Now().UTC()
	logs := make([]string, 0, len(fetched))
	for _, reg := range fetched {
		reg.LastUpdated = now
		reg.SnapshotPDF = snapshot
		existing[reg.ID] = reg
		logs = append(logs, fmt.Sprintf("Updated regulation: %s (v%s)", reg.ID, reg.Version))
	}

	if err := r.store.Save(existing); err != nil {
		return nil, fmt.Errorf("failed to persist regulation manifest: %w", err)
	}
	return logs, nil
}

func (r *RegulationRegistrar) buildSnapshot(regs []*model.RegulationRecord) (string, error) {
	var parts []string
	for _, reg := range regs {
		header := fmt.Sprintf("=== %s ===\nTitle: %s\nSource: %s\nVersion: %s\n%s\n",
			reg.ID, reg.Title, reg.Source, reg.Version, strings.Repeat("-", 80))
		text := strings.TrimSpace(reg.Text)
		if text == "" {
			text = "[No text]"
		}
		parts = append(parts, header, text, "\n\n")
	}
	return r.renderer.RenderArtifact(strings.Join(parts, "\n"), "REGULATIONS_SNAPSHOT", r.snapshotsDir)
}
