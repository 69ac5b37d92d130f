package handler

import (
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/middleware"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	historyService *service.HistoryService
}

func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ListRecords GET /v1/me/records
func (h *HistoryHandler) ListRecords(c *fiber.Ctx) error {
	records, err := h.historyService.ListRecords(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(records)
}

// ListVolumes GET /v1/me/volumes?from=2024-01-01&to=2024-01-31&limit=
func (h *HistoryHandler) ListVolumes(c *fiber.Ctx) error {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return badRequest(c, "to must be YYYY-MM-DD")
	}

	volumes, err := h.historyService.ListVolumes(c.UserContext(), middleware.UserID(c), from, to, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(volumes)
}

// parseDate reads a UTC calendar day; empty means unset.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
