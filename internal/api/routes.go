package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/config"
	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/middleware"
)

// methodNotAllowedMessage is returned for a known path with an unsupported method.
const methodNotAllowedMessage = "الطريقة غير مسموح بها"

// routeNotFoundMessage is returned for unknown paths.
const routeNotFoundMessage = "المسار غير موجود"

// Services bundles the dependencies served over HTTP.
type Services struct {
	Users        core.UserService
	Sessions     core.SessionService
	Billing      core.BillingService
	Admin        core.AdminService
	Progress     core.ProgressService
	Certificates core.CertificateService
	Courses      core.CourseService
	Plans        core.PlanService
}

// SetupRoutes configures all application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is applied by the caller.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	verifier middleware.TokenVerifier,
	svc Services,
) {
	authMW := middleware.NewAuthMiddleware(verifier, logger)
	requireAuth := authMW.RequireAuth()
	requireAdmin := authMW.RequireAdmin(svc.Users)

	authHandler := NewAuthHandler(svc.Users, svc.Sessions, appConfig.SessionCookieSecure, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	courseHandler := NewCourseHandler(svc.Courses, svc.Users, logger)
	planHandler := NewPlanHandler(svc.Plans, logger)
	progressHandler := NewProgressHandler(svc.Progress, logger)
	certificateHandler := NewCertificateHandler(svc.Certificates, logger)
	billingHandler := NewBillingHandler(svc.Billing, logger)
	adminHandler := NewAdminHandler(svc.Admin, logger)

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: routeNotFoundMessage})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: methodNotAllowedMessage})
	})

	apiV1 := router.Group("/api/v1")
	{
		sessionGroup := apiV1.Group("/auth/session")
		{
			sessionGroup.POST("", authHandler.CreateSession)
			sessionGroup.DELETE("", authHandler.DeleteSession)
		}

		userGroup := apiV1.Group("/users", requireAuth)
		{
			userGroup.POST("/initialize", authHandler.InitializeUserProfile)
			userGroup.GET("/me", userHandler.GetCurrentUserProfile)
		}

		courseGroup := apiV1.Group("/courses", authMW.OptionalAuth())
		{
			courseGroup.GET("", courseHandler.ListCourses)
			courseGroup.GET("/:courseId", courseHandler.GetCourse)
		}

		apiV1.GET("/plans", planHandler.ListPlans)

		progressGroup := apiV1.Group("/progress", requireAuth)
		{
			progressGroup.GET("", progressHandler.ListProgress)
			progressGroup.POST("/complete", progressHandler.MarkLessonComplete)
			progressGroup.GET("/:courseId", progressHandler.GetProgress)
		}

		certificateGroup := apiV1.Group("/certificates")
		{
			certificateGroup.POST("", requireAuth, certificateHandler.IssueCertificate)
			certificateGroup.GET("", requireAuth, certificateHandler.ListCertificates)
			certificateGroup.GET("/verify/:code", certificateHandler.VerifyCertificate)
		}

		billingGroup := apiV1.Group("/billing")
		{
			billingGroup.POST("/create-checkout-session", requireAuth, billingHandler.CreateCheckoutSession)
			billingGroup.POST("/create-portal-session", requireAuth, billingHandler.CreatePortalSession)
			// Stripe authenticates with the Stripe-Signature header.
			billingGroup.POST("/webhooks/stripe", billingHandler.HandleStripeWebhook)
		}

		adminGroup := apiV1.Group("/admin", requireAuth, requireAdmin)
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.GET("/users/:userId", adminHandler.GetUser)
			adminGroup.DELETE("/users/:userId", adminHandler.DeleteUser)
			adminGroup.POST("/users/:userId/toggle-premium", adminHandler.TogglePremium)

			adminGroup.POST("/courses", courseHandler.CreateCourse)
			adminGroup.PUT("/courses/:courseId", courseHandler.UpdateCourse)
			adminGroup.DELETE("/courses/:courseId", courseHandler.DeleteCourse)
			adminGroup.POST("/courses/:courseId/lessons", courseHandler.CreateLesson)
			adminGroup.PUT("/courses/:courseId/lessons/:lessonId", courseHandler.UpdateLesson)
			adminGroup.DELETE("/courses/:courseId/lessons/:lessonId", courseHandler.DeleteLesson)

			adminGroup.PUT("/plans/:planId", planHandler.SavePlan)
			adminGroup.DELETE("/plans/:planId", planHandler.DeletePlan)

			adminGroup.POST("/certificates/:certificateId/revoke", certificateHandler.RevokeCertificate)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "UP", Message: "QAcart backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
