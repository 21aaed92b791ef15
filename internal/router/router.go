// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/handlers"
	"github.com/javajoker/atelier-backend/internal/metrics"
	"github.com/javajoker/atelier-backend/internal/middleware"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// Services is the wired service graph behind the HTTP surface.
type Services struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
	Storage       *services.StorageService
	StageConfigs  *services.StageConfigService
	Lifecycle     *services.LifecycleService
	Recalculation *services.RecalculationService
	Snapshots     *services.SnapshotService
	Dashboard     *services.DashboardService
}

// NewServices builds the service graph and loads the stage configuration.
func NewServices(ctx context.Context, db *gorm.DB, cfg *config.Config, m *metrics.Metrics, clock services.Clock) (*Services, error) {
	counting, err := workflow.ParseDayCounting(cfg.Schedule.DayCounting)
	if err != nil {
		return nil, err
	}

	storageService, err := services.NewStorageService(cfg.AWS)
	if err != nil {
		logrus.WithError(err).Warn("Object storage unavailable, product files will have no links")
		storageService = nil
	}

	notificationService := services.NewNotificationService(db, cfg.I18n.DefaultLocale)
	configService := services.NewStageConfigService(db, notificationService, m)
	if err := configService.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load stage configuration: %w", err)
	}

	deps := services.WorkflowDeps{
		DB:            db,
		Configs:       configService,
		Scheduler:     workflow.Scheduler{Counting: counting},
		Clock:         clock,
		Locks:         services.NewProductLocks(),
		Notifications: notificationService,
		Metrics:       m,
	}
	recalculationService := services.NewRecalculationService(deps, cfg.Recalculation.BulkTimeout)

	// Config changes trigger a full recalculation, delegated when a remote worker is configured
	var trigger services.Recalculator = recalculationService
	if cfg.Recalculation.RemoteURL != "" {
		trigger = services.NewRemoteRecalculator(cfg.Recalculation, m)
		logrus.WithField("url", cfg.Recalculation.RemoteURL).Info("Schedule recalculation delegated to remote endpoint")
	}
	configService.SetRecalculator(trigger, cfg.Recalculation.TriggerOnConfig)

	snapshotService := services.NewSnapshotService(db, storageService, clock)

	return &Services{
		DB:            db,
		Notifications: notificationService,
		Storage:       storageService,
		StageConfigs:  configService,
		Lifecycle:     services.NewLifecycleService(deps),
		Recalculation: recalculationService,
		Snapshots:     snapshotService,
		Dashboard:     services.NewDashboardService(snapshotService),
	}, nil
}

func Initialize(db *gorm.DB, cfg *config.Config, m *metrics.Metrics) (*gin.Engine, error) {
	svc, err := NewServices(context.Background(), db, cfg, m, services.NewClock(cfg.Schedule.Location()))
	if err != nil {
		return nil, err
	}
	return Setup(svc, cfg, m), nil
}

// Setup registers middleware and routes for svc.
func Setup(svc *Services, cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(svc.DB, svc.StageConfigs)
	stageConfigHandler := handlers.NewStageConfigHandler(svc.StageConfigs)
	lifecycleHandler := handlers.NewLifecycleHandler(svc.Lifecycle)
	dashboardHandler := handlers.NewDashboardHandler(svc.Snapshots, svc.Dashboard)
	recalculationHandler := handlers.NewRecalculationHandler(svc.Recalculation)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(m))
	}
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))

	// Health check
	r.GET("/health", healthHandler.Health)

	if cfg.Metrics.Enabled && m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.MutationRateLimit(cfg.RateLimit))
	{
		// Stage configuration
		stageConfigs := v1.Group("/stage-configs")
		{
			stageConfigs.GET("", stageConfigHandler.ListStageConfigs)
			stageConfigs.GET("/:stage_name", stageConfigHandler.GetStageConfig)
			stageConfigs.PUT("/:stage_name", stageConfigHandler.UpdateStageConfig)
		}

		// Production lifecycle
		products := v1.Group("/products")
		{
			products.POST("/:id/pipeline", lifecycleHandler.InitializePipeline)
			products.GET("/:id/stages", lifecycleHandler.GetStages)
			products.POST("/:id/advance", lifecycleHandler.AdvanceStage)
			products.POST("/:id/move", lifecycleHandler.MoveToStage)
		}
		v1.PUT("/stages/:id/status", lifecycleHandler.UpdateStageStatus)

		// Read surfaces
		v1.GET("/snapshots", dashboardHandler.GetSnapshots)
		v1.GET("/board", dashboardHandler.GetBoard)
		v1.GET("/alerts", dashboardHandler.GetAlerts)

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)
			dashboard.GET("/funnel", dashboardHandler.GetFunnel)
			dashboard.GET("/delivery", dashboardHandler.GetDelivery)
			dashboard.GET("/approval", dashboardHandler.GetApproval)
			dashboard.GET("/stylists", dashboardHandler.GetStylists)
			dashboard.GET("/top-clients", dashboardHandler.GetTopClients)
			dashboard.GET("/tv", dashboardHandler.GetTV)
		}

		// Scheduling
		v1.POST("/schedule/recalculate", recalculationHandler.Recalculate)

		// Notifications
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "route not found"},
		})
	})

	return r
}
