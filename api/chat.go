package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/campusbike/hubshare-backend/internal/middleware"
	"github.com/campusbike/hubshare-backend/session"
	"github.com/campusbike/hubshare-backend/summarize"
)

const chatSystemPrompt = "You are the assistant for a campus bike share service. " +
	"You help users find and return bikes, explain temporary and transferable " +
	"locks, and answer questions about hubs. Keep answers short and friendly; " +
	"if a question is outside the bike share service, say so."

// sessionStore hands out one conversation history per user. Histories are
// process-local; the TTL bounds how long an idle conversation lingers.
type sessionStore struct {
	mu sync.Mutex
	m  map[int64]*session.History
}

func newSessionStore() *sessionStore {
	return &sessionStore{m: make(map[int64]*session.History)}
}

func (s *sessionStore) get(userID int64) *session.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.m[userID]
	if !ok {
		h = session.NewHistory(session.DefaultMaxMessages, session.DefaultTTL)
		s.m[userID] = h
	}
	return h
}

func (s *sessionStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

type chatTurnRequest struct {
	UserID  any    `json:"user_id"`
	Message string `json:"message"`
}

func (a *API) chatHandler(c *gin.Context) {
	var req chatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a JSON body is required"})
		return
	}

	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	history := a.sessions.get(userID)
	history.Append("user", req.Message)

	messages := []summarize.Message{{Role: "system", Content: chatSystemPrompt}}
	for _, m := range history.Messages() {
		messages = append(messages, summarize.Message{Role: m.Role, Content: m.Content})
	}

	content, err := a.sc.Summarize(c.Request.Context(), messages)
	if err != nil {
		middleware.GetLogger(c).WarnContext(c, "chat upstream unavailable", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"reason": "upstream_unavailable", "error": err.Error()})
		return
	}
	history.Append("assistant", content)

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "content": content})
}

type chatResetRequest struct {
	UserID any `json:"user_id"`
}

func (a *API) chatResetHandler(c *gin.Context) {
	var req chatResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a JSON body is required"})
		return
	}

	userID, err := asInt64(req.UserID, "user_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.sessions.clear(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
