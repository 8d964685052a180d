package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/model"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/pkg/logger"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/service"
)

// RegulationHandler exposes the tracked regulation registry.
type RegulationHandler struct {
	registrar *service.RegulationRegistrar
	store     *service.RegulationStore
}

func NewRegulationHandler(registrar *service.RegulationRegistrar, store *service.RegulationStore) *RegulationHandler {
	return &RegulationHandler{registrar: registrar, store: store}
}

// regulationView omits the full regulation text from list responses.
type regulationView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated"`
	SnapshotPDF string `json:"snapshot_pdf"`
	TextLength  int    `json:"text_length"`
}

func toView(rec *model.RegulationRecord) regulationView {
	return regulationView{
		ID:          rec.ID,
		Title:       rec.Title,
		Source:      rec.Source,
		Version:     rec.Version,
		LastUpdated: rec.LastUpdated.Format("2006-01-02T15:04:05Z07:00"),
		SnapshotPDF: rec.SnapshotPDF,
		TextLength:  len(rec.Text),
	}
}

// Refresh fetches all tracked regulations and replaces the registry.
func (h *RegulationHandler) Refresh(c *gin.Context) {
	logs, err := h.registrar.RegisterAll(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "regulation refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh regulations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// List returns all tracked regulations without their full text.
func (h *RegulationHandler) List(c *gin.Context) {
	regs := h.store.Load()

	out := make([]regulationView, 0, len(regs))
	for _, rec := range regs {
		out = append(out, toView(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	c.JSON(http.StatusOK, gin.H{
		"regulations": out,
		"total":       len(out),
	})
}

// Get returns one regulation including its full text.
func (h *RegulationHandler) Get(c *gin.Context) {
	regs := h.store.Load()
	rec, ok := regs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "regulation not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
