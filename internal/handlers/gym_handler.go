package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type gymDirectory interface {
	ListGyms(ctx context.Context, filter repository.GymListFilter) ([]models.Gym, int, error)
	GetGym(ctx context.Context, gymID int64) (*models.Gym, error)
}

type GymHandler struct {
	gymRepo gymDirectory
}

func NewGymHandler(gymRepo gymDirectory) *GymHandler {
	return &GymHandler{gymRepo: gymRepo}
}

func (h *GymHandler) ListGyms(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	gyms, total, err := h.gymRepo.ListGyms(c.Context(), repository.GymListFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gyms"})
	}

	return c.JSON(fiber.Map{
		"gyms":       gyms,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *GymHandler) GetGym(c *fiber.Ctx) error {
	gymID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym id"})
	}

	gym, err := h.gymRepo.GetGym(c.Context(), gymID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gym not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch gym"})
	}

	return c.JSON(fiber.Map{"gym": gym})
}
