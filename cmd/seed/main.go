// Command seed upserts the plan catalog and courses from a YAML file into Firestore.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"qacart-backend-go/configs"
	"qacart-backend-go/internal/config"
	"qacart-backend-go/internal/db"
)

func main() {
	file := flag.String("file", "", "catalog YAML file (defaults to PATH_CATALOG or "+configs.DefaultCatalogPath+")")
	flag.Parse()

	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	catalog, err := configs.LoadCatalog(*file)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load application configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	clients, err := db.NewClients(ctx, appConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	planRepo := db.NewFirestorePlanRepository(clients.Firestore, logger)
	courseRepo := db.NewFirestoreCourseRepository(clients.Firestore, logger)

	for _, plan := range catalog.PlanModels() {
		if err := planRepo.Save(ctx, plan); err != nil {
			logger.Fatal("Failed to save plan", zap.String("planID", plan.ID), zap.Error(err))
		}
		logger.Info("Plan upserted", zap.String("planID", plan.ID), zap.String("priceID", plan.StripePriceID))
	}

	now := time.Now().UTC()
	for _, entry := range catalog.Courses {
		course := entry.Model(now)
		if existing, err := courseRepo.GetByID(ctx, course.ID); err == nil {
			course.CreatedAt = existing.CreatedAt
		}
		// Update is a full Set, so it creates missing documents too.
		if err := courseRepo.Update(ctx, course); err != nil {
			logger.Fatal("Failed to save course", zap.String("courseID", course.ID), zap.Error(err))
		}
		for _, lesson := range entry.LessonModels(now) {
			if err := courseRepo.UpdateLesson(ctx, course.ID, lesson); err != nil {
				logger.Fatal("Failed to save lesson", zap.String("courseID", course.ID), zap.String("lessonID", lesson.ID), zap.Error(err))
			}
		}
		logger.Info("Course upserted", zap.String("courseID", course.ID), zap.Int("lessons", len(entry.Lessons)))
	}

	logger.Info("Seed complete", zap.Int("plans", len(catalog.Plans)), zap.Int("courses", len(catalog.Courses)))
}
