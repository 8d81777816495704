package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ddelizo/sis-api/api/swagger"
	"github.com/ddelizo/sis-api/internal/handler"
	"github.com/ddelizo/sis-api/internal/middleware"
	"github.com/ddelizo/sis-api/internal/repository"
	"github.com/ddelizo/sis-api/internal/service"
	"github.com/ddelizo/sis-api/pkg/cache"
	"github.com/ddelizo/sis-api/pkg/config"
	"github.com/ddelizo/sis-api/pkg/database"
	"github.com/ddelizo/sis-api/pkg/export"
	"github.com/ddelizo/sis-api/pkg/logger"
	corsmiddleware "github.com/ddelizo/sis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ddelizo/sis-api/pkg/middleware/requestid"
)

// @title School Information System API
// @version 1.0.0
// @description Role-based student, grade and attendance management API
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	parentRepo := repository.NewParentRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, activityRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sis-api",
	})
	userSvc := service.NewUserService(userRepo, activityRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, activityRepo, cacheRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, activityRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, activityRepo, cacheRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, activityRepo, cacheRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, cfg.Reports.ActivityLogLimit, logr)
	parentSvc := service.NewParentService(parentRepo, userRepo, studentRepo, activityRepo, validate, logr)
	summarySvc := service.NewSummaryService(studentRepo, gradeRepo, attendanceRepo, cacheRepo, cfg.Cache.SummaryTTL, logr)
	reportSvc := service.NewReportService(studentRepo, gradeRepo, attendanceRepo, export.NewCSVExporter(), export.NewPDFExporter(), cacheRepo, cfg.Cache.ReportTTL, service.ReportLimits{
		AttendanceAdmin:   cfg.Reports.AttendanceAdminLimit,
		AttendanceTeacher: cfg.Reports.AttendanceTeacherLimit,
		AttendanceStudent: cfg.Reports.AttendanceStudentLimit,
	}, logr)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, metricsSvc),
		User:       handler.NewUserHandler(userSvc),
		Student:    handler.NewStudentHandler(studentSvc, summarySvc, parentSvc),
		Subject:    handler.NewSubjectHandler(subjectSvc),
		Grade:      handler.NewGradeHandler(gradeSvc, studentSvc, parentSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, studentSvc, parentSvc),
		Activity:   handler.NewActivityHandler(activitySvc),
		Report:     handler.NewReportHandler(reportSvc, metricsSvc),
		Parent:     handler.NewParentHandler(parentSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
