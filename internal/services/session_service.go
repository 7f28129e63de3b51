package services

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"dayflow/internal/models"
	"dayflow/internal/store"
)

const maxSessionMessages = 40

// SessionService keeps recent chat history per session in memory so the
// client can omit chatHistory on follow-up turns. Sessions expire after
// idle TTL; losing one only loses conversational context, never data.
type SessionService struct {
	sessions *cache.Cache
}

// NewSessionService builds the session cache with the given idle TTL.
func NewSessionService(ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: cache.New(ttl, 10*time.Minute),
	}
}

// Resolve returns the history for sessionID, creating a new session when
// the id is empty or expired. The returned id is what the client should
// send next turn.
func (s *SessionService) Resolve(sessionID string, fallback []models.ChatMessage) (string, []models.ChatMessage) {
	if sessionID == "" {
		return store.NewID(), fallback
	}
	if cached, found := s.sessions.Get(sessionID); found {
		return sessionID, cached.([]models.ChatMessage)
	}
	return sessionID, fallback
}

// Append records a user/assistant exchange, trimming the oldest turns once
// the session grows past the cap.
func (s *SessionService) Append(sessionID, query, reply string) {
	var history []models.ChatMessage
	if cached, found := s.sessions.Get(sessionID); found {
		history = cached.([]models.ChatMessage)
	}
	history = append(history,
		models.ChatMessage{Role: "user", Content: query},
		models.ChatMessage{Role: "assistant", Content: reply},
	)
	if len(history) > maxSessionMessages {
		history = history[len(history)-maxSessionMessages:]
	}
	s.sessions.Set(sessionID, history, cache.DefaultExpiration)
}

// Forget drops a session.
func (s *SessionService) Forget(sessionID string) {
	s.sessions.Delete(sessionID)
}
