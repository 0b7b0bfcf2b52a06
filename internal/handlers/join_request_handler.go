package handlers

import (
	"context"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/services"
	"github.com/gofiber/fiber/v2"
)

type membershipService interface {
	SubmitJoinRequest(ctx context.Context, actorID int64, actorRole string, declaredRole string, gymID int64) (*models.JoinRequest, error)
	ListJoinRequests(ctx context.Context, actorID int64, actorRole string, gymID int64) ([]models.JoinRequestDetail, error)
	DecideJoinRequest(ctx context.Context, actorID int64, actorRole string, requestID int64, action string) (*models.JoinRequest, error)
}

type JoinRequestHandler struct {
	service membershipService
}

func NewJoinRequestHandler(service membershipService) *JoinRequestHandler {
	return &JoinRequestHandler{service: service}
}

type submitJoinRequest struct {
	Role string `json:"role"`
}

type decideJoinRequest struct {
	Action string `json:"action"`
}

// Submit handles POST /api/gyms/request/:gymId. The body role must match the
// token role.
func (h *JoinRequestHandler) Submit(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || (role != models.RoleMember && role != models.RoleTrainer) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	accountID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	gymID, ok := parseIDParam(c, "gymId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym id"})
	}

	var req submitJoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if _, err := h.service.SubmitJoinRequest(c.Context(), accountID, role, req.Role, gymID); err != nil {
		return mapServiceError(c, err, "Failed to send join request")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Join request sent",
	})
}

func (h *JoinRequestHandler) List(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleGym {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	accountID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	gymID, ok := parseIDParam(c, "gymId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid gym id"})
	}

	requests, err := h.service.ListJoinRequests(c.Context(), accountID, role, gymID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch join requests")
	}

	return c.JSON(fiber.Map{"requests": requests})
}

func (h *JoinRequestHandler) Decide(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleGym {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	accountID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	var req decideJoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Action != services.ActionApprove && req.Action != services.ActionReject {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid action"})
	}

	request, err := h.service.DecideJoinRequest(c.Context(), accountID, role, requestID, req.Action)
	if err != nil {
		return mapServiceError(c, err, "Failed to process join request")
	}

	return c.JSON(fiber.Map{
		"message": "Request " + request.Status + " successfully",
		"request": request,
	})
}
