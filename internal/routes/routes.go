package routes

import (
	"context"

	"github.com/Vibush01/BeFit/internal/config"
	"github.com/Vibush01/BeFit/internal/handlers"
	"github.com/Vibush01/BeFit/internal/middleware"
	"github.com/Vibush01/BeFit/internal/repository"
	"github.com/Vibush01/BeFit/internal/services"
	chatws "github.com/Vibush01/BeFit/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services and handlers onto app. ctx bounds
// the lifetime of websocket connections.
func RegisterRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *pgxpool.Pool, hub *chatws.Hub) {
	accountRepo := repository.NewAccountRepository(db)
	joinRequestRepo := repository.NewJoinRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	workoutPlanRepo := repository.NewWorkoutPlanRepository(db)

	membershipService := services.NewMembershipService(db, accountRepo, joinRequestRepo)
	chatService := services.NewChatService(accountRepo, messageRepo, hub)
	workoutPlanService := services.NewWorkoutPlanService(db, workoutPlanRepo, accountRepo)

	authHandler := handlers.NewAuthHandler(accountRepo, cfg.JWTSecret, cfg.TokenTTL)
	gymHandler := handlers.NewGymHandler(accountRepo)
	joinRequestHandler := handlers.NewJoinRequestHandler(membershipService)
	chatHandler := handlers.NewChatHandler(chatService, hub, cfg.JWTSecret)
	workoutPlanHandler := handlers.NewWorkoutPlanHandler(workoutPlanService)

	authRequired := middleware.AuthRequired(cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/profile", authRequired, authHandler.Profile)

	gyms := api.Group("/gyms")
	gyms.Get("", gymHandler.ListGyms)
	gyms.Post("/request/:gymId", authRequired, joinRequestHandler.Submit)
	gyms.Get("/requests/:gymId", authRequired, joinRequestHandler.List)
	gyms.Put("/request/:requestId", authRequired, joinRequestHandler.Decide)
	gyms.Get("/:id", gymHandler.GetGym)

	chat := api.Group("/chat", authRequired)
	chat.Get("/:gymId", chatHandler.GetHistory)

	plans := api.Group("/workout-plans", authRequired)
	plans.Post("", workoutPlanHandler.CreatePlan)
	plans.Get("", workoutPlanHandler.ListPlans)
	plans.Get("/:id", workoutPlanHandler.GetPlan)

	api.Use("/ws", chatHandler.WebSocketAuth)
	api.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		chatHandler.HandleWebSocket(ctx, conn)
	}))
}
