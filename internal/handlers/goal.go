package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/models"
	"dayflow/internal/store"
)

// GoalHandler serves the goals panel.
type GoalHandler struct {
	goals store.GoalStore
}

// NewGoalHandler creates a new goal handler.
func NewGoalHandler(goals store.GoalStore) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// List handles GET /api/goals, newest first.
func (h *GoalHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	goals, err := h.goals.List(c.Context(), userID, store.OrderByCreatedAt, false)
	if err != nil {
		log.Printf("❌ [GOALS] List failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load goals",
		})
	}
	return c.JSON(fiber.Map{"goals": goals})
}

// Create handles POST /api/goals.
func (h *GoalHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		TargetDate  string `json:"target_date"` // YYYY-MM-DD
		Progress    int    `json:"progress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	goal := &models.Goal{
		ID:          store.NewID(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Progress:    models.ClampProgress(req.Progress),
	}
	if req.TargetDate != "" {
		target, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid target_date, expected YYYY-MM-DD",
			})
		}
		goal.TargetDate = &target
	}

	if err := h.goals.Create(c.Context(), goal); err != nil {
		log.Printf("❌ [GOALS] Create failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create goal",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"goal": goal})
}

// Update handles PATCH /api/goals/:id.
func (h *GoalHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var patch models.GoalPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if patch.Progress != nil {
		clamped := models.ClampProgress(*patch.Progress)
		patch.Progress = &clamped
	}

	goal, err := h.goals.Update(c.Context(), c.Params("id"), userID, &patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Goal not found",
			})
		}
		log.Printf("❌ [GOALS] Update failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update goal",
		})
	}
	return c.JSON(fiber.Map{"goal": goal})
}

// Delete handles DELETE /api/goals/:id.
func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	deleted, err := h.goals.Delete(c.Context(), c.Params("id"), userID)
	if err != nil {
		log.Printf("❌ [GOALS] Delete failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete goal",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
