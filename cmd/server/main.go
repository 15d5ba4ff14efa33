package main

import (
	"github.com/fleetms/vms-backend/internal/config"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/server"
	"github.com/fleetms/vms-backend/pkg/database"
	"github.com/fleetms/vms-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger.Setup(cfg.AppEnv, cfg.LogLevel)

	db := database.Connect()
	if err := migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	if err := seedRoles(db); err != nil {
		logrus.WithError(err).Fatal("failed to seed roles")
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db, cfg); err != nil {
			logrus.WithError(err).Fatal("failed to seed admin user")
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Fatal("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
	}

	srv := server.NewServer(db, redisClient)

	logrus.WithField("port", cfg.Port).Info("starting server")
	if err := srv.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server exited with error")
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Vehicle{},
		&model.Driver{},
		&model.CheckInOut{},
		&model.Maintenance{},
		&model.Expense{},
		&model.Trip{},
		&model.Income{},
		&model.AuditLog{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleAdmin, Description: "Super administrator"},
		{Name: model.RoleManager, Description: "Fleet manager"},
		{Name: model.RoleDriver, Description: "Driver"},
		{Name: model.RoleGateSecurity, Description: "Gate security officer"},
		{Name: model.RoleVehicleOwner, Description: "Individual vehicle owner"},
		{Name: model.RoleStaff, Description: "Staff member"},
		{Name: model.RoleVisitor, Description: "Visitor"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedAdminUser(db *gorm.DB, cfg *config.Config) error {
	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", cfg.SeedAdminEmail).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("admin user already exists, skipping seed")
		return nil
	}

	password := cfg.SeedAdminPassword
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Name:         "Administrator",
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		RoleID:       &adminRole.ID,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logrus.WithField("email", cfg.SeedAdminEmail).Info("admin user seeded")
	return nil
}
