package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/services"
	"github.com/gofiber/fiber/v2"
)

type workoutPlanApplicationService interface {
	CreatePlan(ctx context.Context, trainerID int64, role string, input services.CreatePlanInput) (*models.WorkoutPlan, error)
	ListPlans(ctx context.Context, actorID int64, role string) ([]models.WorkoutPlan, error)
	GetPlan(ctx context.Context, actorID int64, role string, planID int64) (*models.WorkoutPlan, error)
}

type WorkoutPlanHandler struct {
	service workoutPlanApplicationService
}

func NewWorkoutPlanHandler(service workoutPlanApplicationService) *WorkoutPlanHandler {
	return &WorkoutPlanHandler{service: service}
}

type createWorkoutPlanRequest struct {
	MemberID  int64  `json:"member_id"`
	Plan      string `json:"plan"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *WorkoutPlanHandler) CreatePlan(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	trainerID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createWorkoutPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.MemberID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "member_id must be a positive integer"})
	}
	if strings.TrimSpace(req.Plan) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "plan is required"})
	}

	startDate, err := parsePlanDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD or RFC3339"})
	}
	endDate, err := parsePlanDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD or RFC3339"})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must not be before start_date"})
	}

	plan, err := h.service.CreatePlan(c.Context(), trainerID, role, services.CreatePlanInput{
		MemberID:  req.MemberID,
		Plan:      req.Plan,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return mapServiceError(c, err, "Failed to create workout plan")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (h *WorkoutPlanHandler) ListPlans(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || !models.IsValidRole(role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	actorID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	plans, err := h.service.ListPlans(c.Context(), actorID, role)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch workout plans")
	}

	return c.JSON(fiber.Map{"plans": plans})
}

func (h *WorkoutPlanHandler) GetPlan(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || !models.IsValidRole(role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	actorID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	planID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid plan id"})
	}

	plan, err := h.service.GetPlan(c.Context(), actorID, role, planID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch workout plan")
	}

	return c.JSON(fiber.Map{"plan": plan})
}

func parsePlanDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
