package handlers

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type accountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, role string, email string) (*models.Account, error)
}

type AuthHandler struct {
	accountRepo accountStore
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewAuthHandler(accountRepo accountStore, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		accountRepo: accountRepo,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

type registerRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	Role             string  `json:"role"`
	Address          *string `json:"address"`
	ExperienceYears  *int    `json:"experience_years"`
	ExperienceMonths *int    `json:"experience_months"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}
	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}
	req.Email = strings.ToLower(parsedEmail.Address)
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}
	if !models.IsValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
	}
	if validationErr := validateRoleFields(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	existing, err := h.accountRepo.GetByEmail(c.Context(), req.Role, req.Email)
	if err == nil && existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to check email"})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to hash password"})
	}

	account := &models.Account{
		Role:         req.Role,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	switch req.Role {
	case models.RoleGym:
		account.Address = req.Address
	case models.RoleTrainer:
		account.ExperienceYears = req.ExperienceYears
		account.ExperienceMonths = req.ExperienceMonths
	}

	if err := h.accountRepo.Create(c.Context(), account); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"error": "Email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to create account"})
	}

	return h.respondWithToken(c, fiber.StatusCreated, account)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	parsedEmail, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email format"})
	}
	req.Email = strings.ToLower(parsedEmail.Address)
	if !models.IsValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
	}

	account, err := h.accountRepo.GetByEmail(c.Context(), req.Role, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup account"})
	}

	if !utils.CheckPassword(req.Password, account.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "Invalid email or password"})
	}

	return h.respondWithToken(c, fiber.StatusOK, account)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	accountID, err := parseAccountID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	account, err := h.accountRepo.GetByID(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(fiber.Map{"user": account})
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, status int, account *models.Account) error {
	token, err := utils.GenerateToken(strconv.FormatInt(account.ID, 10), account.Role, h.jwtSecret, h.tokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user":  account,
	})
}

func validateRoleFields(req registerRequest) string {
	if req.Address != nil && req.Role != models.RoleGym {
		return "address is only accepted for gyms"
	}
	if (req.ExperienceYears != nil || req.ExperienceMonths != nil) && req.Role != models.RoleTrainer {
		return "experience is only accepted for trainers"
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		return "experience_years must be non-negative"
	}
	if req.ExperienceMonths != nil && (*req.ExperienceMonths < 0 || *req.ExperienceMonths > 11) {
		return "experience_months must be between 0 and 11"
	}
	return ""
}
