package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/pkg/logger"
)

const (
	indexTTL           = time.Hour
	historyWindow      = 8
	contractChunkCount = 4
	rawContextLimit    = 2500
	regSnippetLimit    = 800
)

var contractIntentWords = []string{"contract", "agreement", "clause", "document", "this file"}
var regulationIntentWords = []string{"gdpr", "dpdp", "regulation", "law", "compliance", "spdi"}

const chatSystemPrompt = "You are a regulatory compliance assistant for contracts. " +
	"Answer using the provided context when present. Cover GDPR, the Indian DPDP Act, " +
	"and SPDI rules. Be concise and cite the relevant clause or regulation when you can. " +
	"If the context does not contain the answer, say so."

const chatFailureReply = "Sorry, I couldn't reach the language model. Please try again."

// ChatSession holds one conversation, optionally focused on a single
// registered contract. The contract's vector index is built lazily and
// cached until the TTL expires.
type ChatSession struct {
	ID           string
	ContractID   string
	ContractPath string

	mu      sync.Mutex
	history []ChatMessage
	index   *Index
	builtAt time.Time
}

// History returns a copy of the conversation so far.
func (s *ChatSession) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ChatSession) append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, ChatMessage{Role: role, Content: content})
}

func (s *ChatSession) recentHistory() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) <= historyWindow {
		out := make([]ChatMessage, len(s.history))
		copy(out, s.history)
		return out
	}
	out := make([]ChatMessage, historyWindow)
	copy(out, s.history[len(s.history)-historyWindow:])
	return out
}

// cachedIndex returns the session's contract index, rebuilding it when
// stale. Returns nil when retrieval is unavailable.
func (s *ChatSession) cachedIndex(ctx context.Context, extractor *Extractor, embedder *EmbeddingClient) *Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil && time.Since(s.builtAt) < indexTTL {
		return s.index
	}
	if s.ContractPath == "" {
		return nil
	}

	text := extractor.ExtractText(s.ContractPath)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	idx, err := BuildIndex(ctx, embedder, text)
	if err != nil {
		logger.Debug(ctx, "contract index unavailable", "session_id", s.ID, "error", err)
		return nil
	}
	s.index = idx
	s.builtAt = time.Now()
	return idx
}

// SessionManager tracks live chat sessions by id.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*ChatSession)}
}

// Open creates a session. contractID and path may be empty for a
// general compliance conversation.
func (m *SessionManager) Open(contractID, contractPath string) *ChatSession {
	s := &ChatSession{
		ID:           uuid.New().String(),
		ContractID:   contractID,
		ContractPath: contractPath,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Get(id string) (*ChatSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// ChatService answers questions grounded in the session's contract and
// the registered regulation texts.
type ChatService struct {
	extractor   *Extractor
	embedder    *EmbeddingClient
	completion  *CompletionClient
	regulations *RegulationStore
}

func NewChatService(extractor *Extractor, embedder *EmbeddingClient, completion *CompletionClient, regulations *RegulationStore) *ChatService {
	return &ChatService{
		extractor:   extractor,
		embedder:    embedder,
		completion:  completion,
		regulations: regulations,
	}
}

// Chat answers one user message. Model failures come back as an
// apologetic reply rather than an error; the conversation stays usable.
func (c *ChatService) Chat(ctx context.Context, session *ChatSession, userMessage string) string {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "Please ask a question about your contract or the tracked regulations."
	}
	if !c.completion.Available() {
		return "Chat is not configured on this server; set an LLM API key."
	}

	contextBlock := c.buildContext(ctx, session, userMessage)

	messages := []ChatMessage{{Role: "system", Content: chatSystemPrompt}}
	messages = append(messages, session.recentHistory()...)

	prompt := userMessage
	if contextBlock != "" {
		prompt = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, userMessage)
	}
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})

	reply, err := c.completion.Complete(ctx, messages)
	if err != nil {
		logger.Warn(ctx, "chat completion failed", "session_id", session.ID, "error", err)
		return chatFailureReply
	}

	session.append("user", userMessage)
	session.append("assistant", reply)
	return reply
}

func (c *ChatService) buildContext(ctx context.Context, session *ChatSession, userMessage string) string {
	lower := strings.ToLower(userMessage)
	var parts []string

	if containsAny(lower, contractIntentWords) && session.ContractPath != "" {
		if chunk := c.contractContext(ctx, session, userMessage); chunk != "" {
			parts = append(parts, "--- Contract excerpts ---\n"+chunk)
		}
	}
	if containsAny(lower, regulationIntentWords) {
		if snippet := c.regulationContext(lower); snippet != "" {
			parts = append(parts, "--- Regulation excerpts ---\n"+snippet)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c *ChatService) contractContext(ctx context.Context, session *ChatSession, query string) string {
	if idx := session.cachedIndex(ctx, c.extractor, c.embedder); idx != nil {
		chunks, err := idx.Search(ctx, query, contractChunkCount)
		if err == nil && len(chunks) > 0 {
			return strings.Join(chunks, "\n...\n")
		}
		logger.Debug(ctx, "contract retrieval failed, using raw text", "session_id", session.ID, "error", err)
	}

	// Retrieval unavailable: fall back to a raw text prefix.
	text := c.extractor.ExtractText(session.ContractPath)
	runes := []rune(text)
	if len(runes) > rawContextLimit {
		runes = runes[:rawContextLimit]
	}
	return strings.TrimSpace(string(runes))
}

// regulationContext returns excerpts from regulations whose id, title,
// or text mention terms from the question.
func (c *ChatService) regulationContext(lowerQuery string) string {
	regs := c.regulations.Load()
	if len(regs) == 0 {
		return ""
	}

	var parts []string
	for _, id := range sortedRegulationIDs(regs) {
		reg := regs[id]
		haystack := strings.ToLower(reg.ID + " " + reg.Title)
		matched := false
		for _, word := range regulationIntentWords {
			if strings.Contains(lowerQuery, word) && strings.Contains(haystack, word) {
				matched = true
				break
			}
		}
		if !matched {
			// Generic regulation question: include every tracked text.
			if !strings.Contains(lowerQuery, "gdpr") && !strings.Contains(lowerQuery, "dpdp") && !strings.Contains(lowerQuery, "spdi") {
				matched = true
			}
		}
		if !matched {
			continue
		}
		snippet := []rune(reg.Text)
		if len(snippet) > regSnippetLimit {
			snippet = snippet[:regSnippetLimit]
		}
		parts = append(parts, fmt.Sprintf("[%s] %s\n%s", reg.ID, reg.Title, strings.TrimSpace(string(snippet))))
	}
	return strings.Join(parts, "\n\n")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
