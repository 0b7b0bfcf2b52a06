package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/Vibush01/BeFit/internal/middleware"
	"github.com/Vibush01/BeFit/internal/models"
	chatws "github.com/Vibush01/BeFit/internal/websocket"
	"github.com/Vibush01/BeFit/pkg/utils"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type chatApplicationService interface {
	AuthorizeGym(ctx context.Context, actorID int64, role string, gymID int64) error
	FetchHistory(ctx context.Context, actorID int64, role string, gymID int64) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, actorID int64, role string, gymID int64, text string) (*models.ChatMessage, error)
}

type ChatHandler struct {
	service   chatApplicationService
	hub       *chatws.Hub
	jwtSecret string
}

func NewChatHandler(service chatApplicationService, hub *chatws.Hub, jwtSecret string) *ChatHandler {
	return &ChatHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || !isChatRole(role) {
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

	messages, err := h.service.FetchHistory(c.Context(), accountID, role, gymID)
	if err != nil {
		return mapServiceError(c, err, "Failed to fetch chat messages")
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	if !isChatRole(claims.Role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

// HandleWebSocket serves one upgraded connection until it closes. ctx bounds every
// service call made on its behalf and is cancelled on shutdown.
func (h *ChatHandler) HandleWebSocket(ctx context.Context, conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	role, _ := conn.Locals("role").(string)

	accountID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := chatws.NewClient(h.hub, conn, accountID, role)
	log.Printf("chat client %s connected (account %d, %s)", client.ID, accountID, role)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(ctx, h.service)

	log.Printf("chat client %s disconnected", client.ID)
}

func (h *ChatHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		if token, ok := middleware.BearerToken(c.Get("Authorization")); ok {
			tokenString = token
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func isChatRole(role string) bool {
	return role == models.RoleMember || role == models.RoleTrainer || role == models.RoleGym
}
