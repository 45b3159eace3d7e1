// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "townsquare/docs" // swagger docs
	"townsquare/internal/bootstrap"
	"townsquare/internal/cache"
	"townsquare/internal/config"
	"townsquare/internal/database"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/notifications"
	"townsquare/internal/repository"
	"townsquare/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo        repository.UserRepository
	communityRepo   repository.CommunityRepository
	marketplaceRepo repository.MarketplaceRepository
	productRepo     repository.ProductRepository
	chatroomRepo    repository.ChatroomRepository

	notifier *notifications.Notifier
	chatHub  *notifications.ChatHub

	userService        *service.UserService
	communityService   *service.CommunityService
	marketplaceService *service.MarketplaceService
	cartService        *service.ShoppingCartService
	chatroomService    *service.ChatroomService
}

// NewServer connects to the database and Redis described by cfg and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{Seed: cfg.SeedOnStart})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, tickets and cross-instance chat are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	s := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("townsquare-api"),
		userRepo:        repository.NewUserRepository(db),
		communityRepo:   repository.NewCommunityRepository(db),
		marketplaceRepo: repository.NewMarketplaceRepository(db),
		productRepo:     repository.NewProductRepository(db),
		chatroomRepo:    repository.NewChatroomRepository(db),
	}

	s.notifier = notifications.NewNotifier(redisClient)
	s.chatHub = notifications.NewChatHub(s.notifier)

	s.userService = service.NewUserService(s.userRepo)
	s.communityService = service.NewCommunityService(s.communityRepo, s.marketplaceRepo, s.chatroomRepo, s.userRepo)
	s.marketplaceService = service.NewMarketplaceService(s.marketplaceRepo, s.productRepo, s.communityRepo)
	s.cartService = service.NewShoppingCartService(s.productRepo)
	s.chatroomService = service.NewChatroomService(s.chatroomRepo, s.communityRepo, s.userRepo, s.chatHub.PublishMessage)
	s.communityService.OnMembershipRevoked(s.chatHub.EvictUser)
	s.chatroomService.OnMembershipRevoked(s.chatHub.EvictUser)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	app.Get("/access-denied", s.AccessDenied)

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Townsquare Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Profile registration is the only public write.
	api.Post("/users", middleware.RateLimit(s.redis, 5, 10*time.Minute, "create_user"), s.CreateUser)

	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/", s.ListUsers)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Delete("/me", s.DeleteMyAccount)
	users.Get("/:id", s.GetUserProfile)

	communities := protected.Group("/communities")
	communities.Get("/", s.ListCommunities)
	communities.Post("/", middleware.RateLimit(s.redis, 5, time.Hour, "create_community"), s.CreateCommunity)
	// Specific routes before generic /:id
	communities.Get("/mine", s.ListMyCommunities)
	communities.Get("/manage", s.ListManagedCommunities)
	communities.Post("/:id/restore", s.RestoreCommunity)
	communities.Post("/:id/join", s.JoinCommunity)
	communities.Delete("/:id/members/me", s.LeaveCommunity)
	communities.Get("/:id/marketplaces", s.ListMarketplaces)
	communities.Post("/:id/marketplaces", s.AddMarketplace)
	communities.Get("/:id/chatrooms", s.ListChatrooms)
	communities.Post("/:id/chatrooms", s.AddChatroom)
	communities.Get("/:id", s.GetCommunity)
	communities.Put("/:id", s.UpdateCommunity)
	communities.Delete("/:id", s.DeleteCommunity)

	marketplaces := protected.Group("/marketplaces")
	marketplaces.Post("/:id/restore", s.RestoreMarketplace)
	marketplaces.Post("/:id/products", middleware.RateLimit(s.redis, 20, time.Hour, "sell_product"), s.SellProduct)
	marketplaces.Get("/:id", s.GetMarketplace)
	marketplaces.Put("/:id", s.UpdateMarketplace)
	marketplaces.Delete("/:id", s.DeleteMarketplace)

	products := protected.Group("/products")
	products.Get("/mine", s.ListMyProducts)
	products.Post("/:id/buy", middleware.RateLimit(s.redis, 30, time.Minute, "buy_product"), s.BuyProduct)
	products.Get("/:id", s.GetProduct)
	products.Put("/:id", s.UpdateProduct)
	products.Delete("/:id", s.DeleteProduct)

	cart := protected.Group("/cart")
	cart.Get("/", s.GetCart)
	cart.Post("/pay", middleware.RateLimitWithPolicy(s.redis, 5, time.Minute, middleware.FailClosed, "pay_cart"), s.PayCart)
	cart.Delete("/:productId", s.RemoveFromCart)

	chatrooms := protected.Group("/chatrooms")
	chatrooms.Post("/:id/join", s.JoinChatroom)
	chatrooms.Delete("/:id/members/me", s.LeaveChatroom)
	chatrooms.Post("/:id/messages", middleware.RateLimit(s.redis, 15, time.Minute, "send_chat"), s.PostMessage)
	chatrooms.Get("/:id/messages", s.ListMessages)
	chatrooms.Post("/:id/restore", s.RestoreChatroom)
	chatrooms.Get("/:id", s.GetChatroom)
	chatrooms.Put("/:id", s.UpdateChatroom)
	chatrooms.Delete("/:id", s.DeleteChatroom)

	ws := protected.Group("/ws")
	ws.Post("/ticket", s.IssueWSTicket)
	ws.Get("/chat", s.WebSocketChatHandler())
}

// AuthRequired returns the authentication middleware wired to Redis tickets,
// token revocation and the user store.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config, middleware.AuthOptions{
		RedeemTicket: s.redeemWSTicket,
		IsRevoked:    s.isTokenRevoked,
		CheckUser: func(ctx context.Context, userID uint) error {
			user, err := s.userRepo.Get(ctx, userID)
			if err != nil {
				return err
			}
			if !user.Active {
				return models.NewForbiddenError("User account is deactivated")
			}
			return nil
		},
	})
}

// redeemWSTicket consumes a single-use ticket. Tickets only exist when Redis is configured.
func (s *Server) redeemWSTicket(ctx context.Context, ticket string) (uint, error) {
	if s.redis == nil {
		return 0, errors.New("websocket tickets require redis")
	}
	val, err := s.redis.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed ticket value: %w", err)
	}
	return uint(id), nil
}

func (s *Server) isTokenRevoked(ctx context.Context, jti string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, "blacklist:"+jti).Result()
	return err == nil && n > 0
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so an
// absent client does not fail readiness but an unreachable one does.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// NewApp builds the fiber app with middleware and routes but does not listen.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Townsquare API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires the chat hub to Redis and serves HTTP until Shutdown.
func (s *Server) Start() error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	s.app = s.NewApp()

	if err := s.chatHub.StartWiring(s.shutdownCtx); err != nil {
		middleware.Logger.Error("chat hub wiring failed, falling back to local delivery", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.chatHub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down chat hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
