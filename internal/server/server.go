package server

import (
	"os"
	"strings"
	"time"

	"github.com/fleetms/vms-backend/internal/audit"
	"github.com/fleetms/vms-backend/internal/handler"
	"github.com/fleetms/vms-backend/internal/middleware"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/fleetms/vms-backend/internal/service"
	"github.com/fleetms/vms-backend/pkg/database"
	"github.com/fleetms/vms-backend/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	checkInRepo := repository.NewCheckInOutRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	tripRepo := repository.NewTripRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	txManager := database.NewTxManager(db)
	recorder := audit.NewRecorder(auditRepo)

	avatarStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize cloudinary storage")
	}

	authSvc := service.NewAuthService(userRepo, avatarStorage)
	authHandler := handler.NewAuthHandler(authSvc)

	userSvc := service.NewUserService(txManager, userRepo, recorder)
	userHandler := handler.NewUserHandler(userSvc)

	vehicleSvc := service.NewVehicleService(txManager, vehicleRepo, driverRepo, userRepo, recorder)
	vehicleHandler := handler.NewVehicleHandler(vehicleSvc)

	driverSvc := service.NewDriverService(txManager, driverRepo, vehicleRepo, userRepo, recorder)
	driverHandler := handler.NewDriverHandler(driverSvc)

	checkInSvc := service.NewCheckInOutService(txManager, checkInRepo, vehicleRepo, driverRepo, recorder)
	checkInHandler := handler.NewCheckInOutHandler(checkInSvc)

	maintenanceSvc := service.NewMaintenanceService(txManager, maintenanceRepo, expenseRepo, vehicleRepo, driverRepo, recorder)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceSvc)

	tripSvc := service.NewTripService(txManager, tripRepo, incomeRepo, vehicleRepo, driverRepo, recorder)
	tripHandler := handler.NewTripHandler(tripSvc)

	expenseSvc := service.NewExpenseService(txManager, expenseRepo, vehicleRepo, recorder)
	expenseHandler := handler.NewExpenseHandler(expenseSvc)

	incomeSvc := service.NewIncomeService(txManager, incomeRepo, vehicleRepo, driverRepo, recorder)
	incomeHandler := handler.NewIncomeHandler(incomeSvc)

	auditSvc := service.NewAuditService(auditRepo)
	auditHandler := handler.NewAuditHandler(auditSvc)

	dashboardSvc := service.NewDashboardService(dashboardRepo, maintenanceRepo, expenseRepo, redisClient)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	gateSvc := service.NewGateService(checkInRepo, tripRepo)
	gateHandler := handler.NewGateHandler(gateSvc)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes. Role checks live in the services; the router
	// only guarantees an authenticated actor.
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/avatar", authHandler.UpdateAvatar)

		protected.GET("/users", userHandler.List)
		protected.POST("/users", userHandler.Create)
		protected.GET("/users/:id", userHandler.Get)
		protected.PUT("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id", userHandler.Delete)
		protected.GET("/roles", userHandler.Roles)

		protected.GET("/vehicles", vehicleHandler.List)
		protected.POST("/vehicles", vehicleHandler.Create)
		protected.GET("/vehicles/available", vehicleHandler.Available)
		protected.GET("/vehicles/:id", vehicleHandler.Get)
		protected.PUT("/vehicles/:id", vehicleHandler.Update)
		protected.DELETE("/vehicles/:id", vehicleHandler.Delete)

		protected.GET("/drivers", driverHandler.List)
		protected.POST("/drivers", driverHandler.Create)
		protected.GET("/drivers/available-users", driverHandler.AvailableUsers)
		protected.GET("/drivers/:id", driverHandler.Get)
		protected.PUT("/drivers/:id", driverHandler.Update)
		protected.DELETE("/drivers/:id", driverHandler.Delete)

		protected.GET("/check-in-outs", checkInHandler.List)
		protected.POST("/check-in-outs", checkInHandler.CheckIn)
		protected.GET("/check-in-outs/:id", checkInHandler.Get)
		protected.PUT("/check-in-outs/:id", checkInHandler.Update)
		protected.PUT("/check-in-outs/:id/check-out", checkInHandler.CheckOut)
		protected.DELETE("/check-in-outs/:id", checkInHandler.Delete)

		protected.GET("/maintenances", maintenanceHandler.List)
		protected.POST("/maintenances", maintenanceHandler.Create)
		protected.GET("/maintenances/:id", maintenanceHandler.Get)
		protected.PUT("/maintenances/:id", maintenanceHandler.Update)
		protected.DELETE("/maintenances/:id", maintenanceHandler.Delete)

		protected.GET("/trips", tripHandler.List)
		protected.POST("/trips", tripHandler.Create)
		protected.GET("/trips/:id", tripHandler.Get)
		protected.PUT("/trips/:id", tripHandler.Update)
		protected.DELETE("/trips/:id", tripHandler.Delete)

		protected.GET("/expenses", expenseHandler.List)
		protected.POST("/expenses", expenseHandler.Create)
		protected.GET("/expenses/:id", expenseHandler.Get)
		protected.PUT("/expenses/:id", expenseHandler.Update)
		protected.DELETE("/expenses/:id", expenseHandler.Delete)

		protected.GET("/incomes", incomeHandler.List)
		protected.POST("/incomes", incomeHandler.Create)
		protected.GET("/incomes/:id", incomeHandler.Get)
		protected.PUT("/incomes/:id", incomeHandler.Update)
		protected.DELETE("/incomes/:id", incomeHandler.Delete)

		protected.GET("/audit-logs", auditHandler.List)
		protected.GET("/audit-logs/:id", auditHandler.Get)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)
		protected.GET("/dashboard/activity", dashboardHandler.Activity)
		protected.GET("/dashboard/trends", dashboardHandler.Trends)

		protected.GET("/gate/stats", gateHandler.Stats)
		protected.GET("/gate/recent-logs", gateHandler.RecentLogs)
		protected.GET("/gate/within-premises", gateHandler.WithinPremises)
		protected.GET("/gate/alerts", gateHandler.Alerts)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
