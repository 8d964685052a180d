package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/pkg/logger"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/service"
)

const maxUploadBytes = 32 << 20 // 32 MB

var allowedUploadExts = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// ContractHandler handles contract registration, inspection, and
// rectification passes.
type ContractHandler struct {
	registrar    *service.Registrar
	store        *service.ContractStore
	orchestrator *service.Orchestrator
	mailer       service.UpdateMailer
	regulations  *service.RegulationStore
}

func NewContractHandler(registrar *service.Registrar, store *service.ContractStore, orchestrator *service.Orchestrator, mailer service.UpdateMailer, regulations *service.RegulationStore) *ContractHandler {
	return &ContractHandler{
		registrar:    registrar,
		store:        store,
		orchestrator: orchestrator,
		mailer:       mailer,
		regulations:  regulations,
	}
}

// Upload registers an uploaded contract document.
func (h *ContractHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .pdf, .txt and .md files are supported"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	rec, err := h.registrar.Register(data, fileHeader.Filename)
	if err != nil {
		logger.Error(c.Request.Context(), "contract registration failed", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Info(c.Request.Context(), "contract registered", "contract_id", rec.ID)
	c.JSON(http.StatusCreated, rec)
}

// List returns all registered contracts sorted by id.
func (h *ContractHandler) List(c *gin.Context) {
	records := h.store.Load()

	out := make([]*model.ContractRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	c.JSON(http.StatusOK, gin.H{
		"contracts": out,
		"total":     len(out),
	})
}

// Get returns one contract record.
func (h *ContractHandler) Get(c *gin.Context) {
	rec, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type analyzeRequest struct {
	AutoApply bool `json:"auto_apply"`
}

// Analyze runs one rectification pass for the contract.
func (h *ContractHandler) Analyze(c *gin.Context) {
	id := c.Param("id")

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := context.WithValue(c.Request.Context(), logger.ContractIDKey, id)
	outcome := h.orchestrator.ApplyUpdates(ctx, id, req.AutoApply)

	status := http.StatusOK
	if outcome.Status == model.OutcomeNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, outcome)
}

type emailRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// Email re-sends the contract's latest artifacts to a recipient.
func (h *ContractHandler) Email(c *gin.Context) {
	rec, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}

	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient is required"})
		return
	}
	if h.mailer == nil || !h.mailer.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mail is not configured on this server"})
		return
	}

	attachments := []string{rec.LastSuggestionsPDF}
	if rec.HasHistory() {
		attachments = append(attachments, rec.CurrentVersionPath)
	}

	var version string
	for _, reg := range h.regulations.Load() {
		if reg.Version > version {
			version = reg.Version
		}
	}

	title := strings.TrimSuffix(filepath.Base(rec.Path), filepath.Ext(rec.Path))
	if err := h.mailer.SendComplianceUpdate(req.Recipient, title, "GDPR + Indian Data Laws", version, attachments); err != nil {
		logger.Warn(c.Request.Context(), "artifact re-send failed", "contract_id", rec.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "recipient": req.Recipient})
}

// DownloadSuggestions streams the latest suggestions report.
func (h *ContractHandler) DownloadSuggestions(c *gin.Context) {
	rec, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	if rec.LastSuggestionsPDF == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no suggestions generated yet"})
		return
	}
	c.FileAttachment(rec.LastSuggestionsPDF, filepath.Base(rec.LastSuggestionsPDF))
}

// DownloadCurrent streams the contract's current version.
func (h *ContractHandler) DownloadCurrent(c *gin.Context) {
	rec, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	path := rec.CurrentVersionPath
	if path == "" {
		path = rec.Path
	}
	c.FileAttachment(path, filepath.Base(path))
}
