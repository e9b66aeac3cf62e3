package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/feed"
)

// defaultRecentCount matches the dashboard's live-events strip.
const defaultRecentCount = 6

type EventsHandler struct {
	buffer *feed.Buffer
}

func NewEventsHandler(buffer *feed.Buffer) *EventsHandler {
	return &EventsHandler{buffer: buffer}
}

// List serves the full chronological log, optionally filtered by subject
// name.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	events := feed.Chronological(h.buffer.Snapshot())
	if name := c.Query("name"); name != "" {
		events = feed.FilterBySubject(events, name)
	}
	return c.JSON(events)
}

// Recent serves the newest n events for the dashboard strip.
func (h *EventsHandler) Recent(c *fiber.Ctx) error {
	n := defaultRecentCount
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "n must be a non-negative integer")
		}
		n = parsed
	}
	return c.JSON(feed.Recent(h.buffer.Snapshot(), n))
}

// Subjects serves the latest event per distinct subject, so repeat
// detections of one person do not flood the summary.
func (h *EventsHandler) Subjects(c *fiber.Ctx) error {
	return c.JSON(feed.LatestPerSubject(h.buffer.Snapshot()))
}
