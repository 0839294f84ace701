package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"qacart-backend-go/internal/api"
	"qacart-backend-go/internal/cache"
	"qacart-backend-go/internal/config"
	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/events"
	"qacart-backend-go/internal/identity"
	"qacart-backend-go/internal/middleware"
	"qacart-backend-go/internal/payments"
)

func newLogger(ginMode string) (*zap.Logger, error) {
	if strings.ToLower(ginMode) == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// In production, environment variables are set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	// --- 1. Logger and configuration ---
	zapLogger, err := newLogger(os.Getenv("GIN_MODE"))
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 2. Firebase Admin SDK (Firestore, Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.NewClients(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	firebaseIdentity, err := identity.NewFirebaseIdentity(clients.Auth)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize identity provider", zap.Error(err))
	}

	// --- 3. Optional infrastructure ---
	var planCache core.PlanCache
	if appConfig.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(initCtx, appConfig.RedisURL, zapLogger)
		if err != nil {
			zapLogger.Warn("Redis unavailable, plan catalog will not be cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			planCache = cache.NewRedisPlanCache(redisClient, appConfig.PlanCacheTTL)
		}
	}

	var publisher core.EventPublisher = core.NoopPublisher{}
	if appConfig.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQPublisher(appConfig.RabbitMQURL, appConfig.RabbitMQExchange, zapLogger)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable, domain events will be dropped", zap.Error(err))
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	// --- 4. Repositories ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore, zapLogger)
	auditRepo := db.NewFirestoreAuditRepository(clients.Firestore)
	progressRepo := db.NewFirestoreProgressRepository(clients.Firestore, zapLogger)
	certRepo := db.NewFirestoreCertificateRepository(clients.Firestore, zapLogger)
	courseRepo := db.NewFirestoreCourseRepository(clients.Firestore, zapLogger)
	planRepo := db.NewFirestorePlanRepository(clients.Firestore, zapLogger)

	// --- 5. Services ---
	gateway := payments.NewStripeGateway(appConfig.StripeSecretKey, appConfig.StripeWebhookSecret, zapLogger)
	auditService := core.NewAuditService(auditRepo)
	userService := core.NewUserService(userRepo, appConfig.AdminEmailList(), zapLogger)
	planService := core.NewPlanService(planRepo, planCache, auditService, zapLogger)
	services := api.Services{
		Users:        userService,
		Sessions:     core.NewSessionService(firebaseIdentity, zapLogger),
		Billing:      core.NewBillingService(userRepo, planService, gateway, publisher, appConfig.ClientURL, zapLogger),
		Admin:        core.NewAdminService(userRepo, progressRepo, certRepo, firebaseIdentity, auditService, publisher, zapLogger),
		Progress:     core.NewProgressService(progressRepo, publisher, zapLogger),
		Certificates: core.NewCertificateService(certRepo, progressRepo, userRepo, courseRepo, auditService, publisher, zapLogger),
		Courses:      core.NewCourseService(courseRepo, auditService, zapLogger),
		Plans:        planService,
	}
	zapLogger.Info("Core services initialized successfully.")

	sweeper := core.NewGiftExpirySweeper(userRepo, publisher, zapLogger)
	if appConfig.GiftSweepCron != "" {
		if err := sweeper.Start(appConfig.GiftSweepCron); err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to schedule gift expiry sweep", zap.Error(err))
		}
	}

	// --- 6. HTTP engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, appConfig, zapLogger, firebaseIdentity, services)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 7. Graceful shutdown ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	sweeper.Stop(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
