package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/GymDeskBack/internal/models"
)

type statsReader interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type StatsHandler struct {
	stats statsReader
}

func NewStatsHandler(stats statsReader) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.stats.GetStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch dashboard statistics",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"stats": stats,
		},
	})
}
