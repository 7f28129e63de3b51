package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/store"
)

// BioHandler serves the user biography.
type BioHandler struct {
	bios store.BioStore
}

// NewBioHandler creates a new bio handler.
func NewBioHandler(bios store.BioStore) *BioHandler {
	return &BioHandler{bios: bios}
}

// Get handles GET /api/bio. A user without a bio gets an empty string.
func (h *BioHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	bio, err := h.bios.Get(c.Context(), userID)
	if err != nil {
		log.Printf("❌ [BIO] Get failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load bio",
		})
	}
	return c.JSON(fiber.Map{"bio": bio})
}

// Put handles PUT /api/bio. The new text fully replaces the old one.
func (h *BioHandler) Put(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req struct {
		Bio string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.bios.Set(c.Context(), userID, req.Bio); err != nil {
		log.Printf("❌ [BIO] Set failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save bio",
		})
	}
	return c.JSON(fiber.Map{"bio": req.Bio})
}
