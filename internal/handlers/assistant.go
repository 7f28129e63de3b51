package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/agent"
	"dayflow/internal/models"
	"dayflow/internal/services"
)

// AssistantHandler runs the chat agent loop for authenticated users.
type AssistantHandler struct {
	loop     *agent.Loop
	sessions *services.SessionService
	limiter  *services.UsageLimiterService
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(loop *agent.Loop, sessions *services.SessionService, limiter *services.UsageLimiterService) *AssistantHandler {
	return &AssistantHandler{
		loop:     loop,
		sessions: sessions,
		limiter:  limiter,
	}
}

// Chat handles POST /api/assistant/chat. The request carries the user's
// message plus optional session id and prior history; the response is the
// assistant's reply and a diff of every row the loop touched.
func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.AssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	if h.limiter != nil {
		if err := h.limiter.CheckMessageLimit(c.Context(), userID); err != nil {
			var limitErr *services.LimitExceededError
			if errors.As(err, &limitErr) {
				return c.Status(fiber.StatusTooManyRequests).JSON(limitErr)
			}
			log.Printf("⚠️ [CHAT] Usage check failed for user %s: %v", userID, err)
		}
	}

	// Caller-supplied history wins; the cached session only fills in when
	// the client sends just the new query.
	sessionID, history := h.sessions.Resolve(req.SessionID, req.ChatHistory)
	req.SessionID = sessionID
	if len(req.ChatHistory) == 0 {
		req.ChatHistory = history
	}

	log.Printf("💬 [CHAT] user=%s session=%s query_len=%d", userID, sessionID, len(req.Query))

	start := time.Now()
	if metrics := services.GetMetrics(); metrics != nil {
		metrics.RecordAssistantRequest()
	}

	resp, err := h.loop.Run(c.Context(), userID, &req)
	if err != nil {
		log.Printf("❌ [CHAT] Agent loop failed for user %s: %v", userID, err)
		if metrics := services.GetMetrics(); metrics != nil {
			metrics.RecordAssistantError("loop")
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Assistant is unavailable, please try again",
		})
	}

	if metrics := services.GetMetrics(); metrics != nil {
		metrics.RecordAssistantLatency(time.Since(start).Seconds())
	}

	h.sessions.Append(sessionID, req.Query, resp.Message)
	if h.limiter != nil {
		if err := h.limiter.IncrementMessageCount(c.Context(), userID); err != nil {
			log.Printf("⚠️ [CHAT] Usage increment failed for user %s: %v", userID, err)
		}
	}

	log.Printf("✅ [CHAT] user=%s session=%s took=%s", userID, sessionID, time.Since(start).Round(time.Millisecond))
	return c.JSON(resp)
}

// Usage handles GET /api/assistant/usage and reports the day's message count.
func (h *AssistantHandler) Usage(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if h.limiter == nil {
		return c.JSON(fiber.Map{"used": 0, "limit": 0, "unlimited": true})
	}
	used, limit, err := h.limiter.GetDailyUsage(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read usage",
		})
	}
	return c.JSON(fiber.Map{"used": used, "limit": limit, "unlimited": limit <= 0})
}
