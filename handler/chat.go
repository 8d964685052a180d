package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/pkg/logger"
	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/service"
)

// ChatHandler exposes the compliance chat interface.
type ChatHandler struct {
	sessions  *service.SessionManager
	chat      *service.ChatService
	contracts *service.ContractStore
}

func NewChatHandler(sessions *service.SessionManager, chat *service.ChatService, contracts *service.ContractStore) *ChatHandler {
	return &ChatHandler{sessions: sessions, chat: chat, contracts: contracts}
}

type openSessionRequest struct {
	ContractID string `json:"contract_id"`
}

// OpenSession starts a conversation, optionally pinned to a contract.
func (h *ChatHandler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var contractPath string
	if req.ContractID != "" {
		rec, ok := h.contracts.Get(req.ContractID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
			return
		}
		contractPath = rec.CurrentVersionPath
		if contractPath == "" {
			contractPath = rec.Path
		}
	}

	session := h.sessions.Open(req.ContractID, contractPath)
	logger.Info(c.Request.Context(), "chat session opened", "session_id", session.ID, "contract_id", req.ContractID)
	c.JSON(http.StatusCreated, gin.H{
		"session_id":  session.ID,
		"contract_id": session.ContractID,
	})
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Message sends one user message to a session.
func (h *ChatHandler) Message(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply := h.chat.Chat(c.Request.Context(), session, req.Message)
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"reply":      reply,
	})
}

// History returns the session's conversation so far.
func (h *ChatHandler) History(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"history":    session.History(),
	})
}

// CloseSession discards a session.
func (h *ChatHandler) CloseSession(c *gin.Context) {
	if _, ok := h.sessions.Get(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.sessions.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
