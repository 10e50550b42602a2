package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/righthome/cosmos-api/docs"
	"github.com/righthome/cosmos-api/internal/api/handler"
	"github.com/righthome/cosmos-api/internal/api/middleware"
	"github.com/righthome/cosmos-api/internal/core/ports"
	"github.com/righthome/cosmos-api/internal/core/token"
	"github.com/righthome/cosmos-api/pkg/logger"
)

// Deps carries everything the router needs, constructed in main.
type Deps struct {
	Accounts      ports.AccountService
	Admin         ports.AdminService
	Consultations ports.ConsultationService
	Gallery       ports.GalleryService
	AccountRepo   ports.AccountRepository
	Tokens        *token.Issuer
	Mongo         *mongo.Database
	Redis         *redis.Client
	FrontendURL   string
	SecureCookies bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("righthome"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.FrontendURL},
		AllowCredentials: true,
	}))

	auth := middleware.Auth(deps.Tokens)
	adminOnly := middleware.AdminOnly(deps.AccountRepo)

	// --- Account lifecycle ---
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Tokens.SessionTTL(), deps.SecureCookies)
	users := e.Group("/users")
	users.POST("/register", accountHandler.Register)
	users.POST("/verify-email", accountHandler.VerifyEmail)
	users.POST("/login", accountHandler.Login)
	users.POST("/forgot-password", accountHandler.ForgotPassword)
	users.POST("/reset-password", accountHandler.ResetPassword)
	users.POST("/logout", accountHandler.Logout, auth)
	users.POST("/change-password", accountHandler.ChangePassword, auth)
	users.POST("/update-password", accountHandler.ChangePassword, auth)
	users.POST("/update-profile", accountHandler.UpdateProfile, auth)
	users.POST("/verify-email-change", accountHandler.VerifyEmailChange, auth)
	users.POST("/delete-account", accountHandler.DeleteAccount, auth)
	users.GET("/me", accountHandler.Me, auth)

	// --- Admin panel ---
	adminHandler := handler.NewAdminHandler(deps.Admin)
	admin := e.Group("/admin", auth, adminOnly)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.POST("/users/:id/promote", adminHandler.PromoteUser)
	admin.POST("/users/:id/demote", adminHandler.DemoteUser)

	// --- Consultations ---
	consultationHandler := handler.NewConsultationHandler(deps.Consultations)
	consultations := e.Group("/consultations")
	consultations.POST("", consultationHandler.Create)
	consultations.GET("", consultationHandler.List, auth, adminOnly)
	consultations.GET("/:id", consultationHandler.Get, auth, adminOnly)
	consultations.PUT("/:id", consultationHandler.Update, auth, adminOnly)
	consultations.DELETE("/:id", consultationHandler.Delete, auth, adminOnly)

	// --- Project images ---
	galleryHandler := handler.NewGalleryHandler(deps.Gallery)
	images := e.Group("/project-images")
	images.GET("/service/:service", galleryHandler.ListByService)
	images.POST("/upload", galleryHandler.Upload, auth, adminOnly)
	images.PUT("/:id", galleryHandler.Update, auth, adminOnly)
	images.DELETE("/:id", galleryHandler.Delete, auth, adminOnly)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
