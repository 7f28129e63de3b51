package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/models"
	"dayflow/internal/store"
)

// IdeaHandler serves the ideas panel.
type IdeaHandler struct {
	ideas store.IdeaStore
}

// NewIdeaHandler creates a new idea handler.
func NewIdeaHandler(ideas store.IdeaStore) *IdeaHandler {
	return &IdeaHandler{ideas: ideas}
}

// List handles GET /api/ideas, newest first.
func (h *IdeaHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	ideas, err := h.ideas.List(c.Context(), userID, store.OrderByCreatedAt, false)
	if err != nil {
		log.Printf("❌ [IDEAS] List failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load ideas",
		})
	}
	return c.JSON(fiber.Map{"ideas": ideas})
}

// Create handles POST /api/ideas.
func (h *IdeaHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}

	idea := &models.Idea{
		ID:      store.NewID(),
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := h.ideas.Create(c.Context(), idea); err != nil {
		log.Printf("❌ [IDEAS] Create failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create idea",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"idea": idea})
}

// Update handles PATCH /api/ideas/:id.
func (h *IdeaHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var patch models.IdeaPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	idea, err := h.ideas.Update(c.Context(), c.Params("id"), userID, &patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Idea not found",
			})
		}
		log.Printf("❌ [IDEAS] Update failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update idea",
		})
	}
	return c.JSON(fiber.Map{"idea": idea})
}

// Delete handles DELETE /api/ideas/:id.
func (h *IdeaHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	deleted, err := h.ideas.Delete(c.Context(), c.Params("id"), userID)
	if err != nil {
		log.Printf("❌ [IDEAS] Delete failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete idea",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Idea not found",
		})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
