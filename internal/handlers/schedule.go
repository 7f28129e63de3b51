package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/models"
	"dayflow/internal/store"
	"dayflow/internal/timeparse"
)

// ScheduleHandler serves the dashboard calendar panel.
type ScheduleHandler struct {
	schedule store.ScheduleStore
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(schedule store.ScheduleStore) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// List handles GET /api/schedule. With ?date=YYYY-MM-DD it returns only the
// items occurring on that date, expanding recurrence rules at read time.
func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	items, err := h.schedule.List(c.Context(), userID, store.OrderByStartTime, true)
	if err != nil {
		log.Printf("❌ [SCHEDULE] List failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load schedule",
		})
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		return c.JSON(fiber.Map{"items": items})
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
	}

	filtered := make([]models.ScheduleItem, 0, len(items))
	for _, item := range items {
		rule, err := timeparse.ParseRule(item.RecurrenceRule)
		if err != nil {
			// A malformed stored rule should not hide the item entirely.
			log.Printf("⚠️ [SCHEDULE] Bad recurrence rule on item %s: %v", item.ID, err)
			rule = nil
		}
		if timeparse.OccursOn(rule, item.AllDay, item.StartTime, date) {
			filtered = append(filtered, item)
		}
	}
	return c.JSON(fiber.Map{"items": filtered, "date": dateStr})
}

// Create handles POST /api/schedule. Times arrive as loose client strings
// and are normalized; any fallback applied is reported in warnings.
func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.CreateScheduleItemRequest
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

	day := timeparse.ParseDate(req.Date, time.Local, time.Now())
	var start, end time.Time
	var warnings []string
	if req.AllDay {
		start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end = time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, day.Location())
	} else {
		start, end, warnings = timeparse.NormalizeRange(day, req.StartTime, req.EndTime)
	}

	item := &models.ScheduleItem{
		ID:             store.NewID(),
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		StartTime:      start,
		EndTime:        end,
		AllDay:         req.AllDay,
		RecurrenceRule: timeparse.BuildRule(req.Frequency, req.Interval, req.RepeatDays),
	}
	if req.Priority != "" {
		p := models.Priority(req.Priority)
		if models.ValidPriority(p) {
			item.Priority = &p
		} else {
			warnings = append(warnings, "unknown priority \""+req.Priority+"\" ignored")
		}
	}

	if err := h.schedule.Create(c.Context(), item); err != nil {
		log.Printf("❌ [SCHEDULE] Create failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create schedule item",
		})
	}

	log.Printf("📅 [SCHEDULE] Created item %s for user %s", item.ID, userID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item, "warnings": warnings})
}

// Update handles PATCH /api/schedule/:id with a partial JSON patch.
func (h *ScheduleHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var patch models.ScheduleItemPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if patch.Priority != nil && !models.ValidPriority(*patch.Priority) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Priority must be low, medium or high",
		})
	}

	item, err := h.schedule.Update(c.Context(), c.Params("id"), userID, &patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Schedule item not found",
			})
		}
		log.Printf("❌ [SCHEDULE] Update failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update schedule item",
		})
	}
	return c.JSON(fiber.Map{"item": item})
}

// Delete handles DELETE /api/schedule/:id.
func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	deleted, err := h.schedule.Delete(c.Context(), c.Params("id"), userID)
	if err != nil {
		log.Printf("❌ [SCHEDULE] Delete failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete schedule item",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule item not found",
		})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
