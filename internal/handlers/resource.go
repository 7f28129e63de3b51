package handlers

import (
	"errors"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/models"
	"dayflow/internal/store"
)

// ResourceHandler serves the saved-resources panel.
type ResourceHandler struct {
	resources store.ResourceStore
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(resources store.ResourceStore) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// List handles GET /api/resources, newest first.
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	resources, err := h.resources.List(c.Context(), userID, store.OrderByCreatedAt, false)
	if err != nil {
		log.Printf("❌ [RESOURCES] List failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resources",
		})
	}
	return c.JSON(fiber.Map{"resources": resources})
}

// Create handles POST /api/resources for manually saved links.
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req struct {
		Title          string `json:"title"`
		URL            string `json:"url"`
		Description    string `json:"description"`
		Category       string `json:"category"`
		RelevanceScore int    `json:"relevance_score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and url are required",
		})
	}
	if parsed, err := url.Parse(req.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL must be http or https",
		})
	}
	if req.Category == "" {
		req.Category = models.ResourceCategoryArticle
	}
	if !models.ValidResourceCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category must be Article, Video, Course or Tool",
		})
	}
	if req.RelevanceScore <= 0 {
		req.RelevanceScore = 50
	}
	if req.RelevanceScore > 100 {
		req.RelevanceScore = 100
	}

	res := &models.Resource{
		ID:             store.NewID(),
		UserID:         userID,
		Title:          req.Title,
		URL:            req.URL,
		Description:    req.Description,
		Category:       req.Category,
		RelevanceScore: req.RelevanceScore,
	}
	if err := h.resources.Create(c.Context(), res); err != nil {
		log.Printf("❌ [RESOURCES] Create failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create resource",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"resource": res})
}

// Update handles PATCH /api/resources/:id.
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var patch models.ResourcePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if patch.Category != nil && !models.ValidResourceCategory(*patch.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category must be Article, Video, Course or Tool",
		})
	}

	res, err := h.resources.Update(c.Context(), c.Params("id"), userID, &patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resource not found",
			})
		}
		log.Printf("❌ [RESOURCES] Update failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update resource",
		})
	}
	return c.JSON(fiber.Map{"resource": res})
}

// Delete handles DELETE /api/resources/:id.
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	deleted, err := h.resources.Delete(c.Context(), c.Params("id"), userID)
	if err != nil {
		log.Printf("❌ [RESOURCES] Delete failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete resource",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resource not found",
		})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
