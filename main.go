package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	"go.uber.org/zap"

	"bookline-backend/config"
	"bookline-backend/logger"
	"bookline-backend/metrics"
	"bookline-backend/models"
	"bookline-backend/routes"
	"bookline-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Environment, cfg.ServiceName); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zlog := logger.L()
	defer zlog.Sync()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Service{},
		&models.Client{},
		&models.Appointment{},
		&models.CommunicationsLog{},
		&models.Template{},
		&models.NotificationOutbox{},
	); err != nil {
		zlog.Fatal("auto migration failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	} else {
		zlog.Warn("REDIS_ADDR not set; slot locking disabled")
	}

	var smsClient *twilio.RestClient
	if cfg.TwilioAccountSID != "" {
		smsClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}

	sender := &services.SMTPSender{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		FromName: cfg.MailFromName,
		FromAddr: cfg.MailFromAddr,
		Log:      zlog,
	}

	locks := services.NewSlotLock(redisClient, zlog)
	notifier := services.NewNotificationService(db, sender, smsClient, cfg.TwilioFromNumber, cfg.SimulateNotifications, zlog)
	appointments := services.NewAppointmentService(db, locks, zlog)
	availability := services.NewAvailabilityService(db, zlog)
	outbox := services.NewOutboxWorker(db, notifier, zlog)
	reminders := services.NewReminderService(db, zlog)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.OutboxCronSpec, outbox.Run); err != nil {
		zlog.Fatal("invalid outbox cron spec", zap.Error(err))
	}
	if _, err := scheduler.AddFunc(cfg.ReminderCronSpec, reminders.RunNow); err != nil {
		zlog.Fatal("invalid reminder cron spec", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Deps{
		DB:           db,
		Cfg:          cfg,
		Appointments: appointments,
		Availability: availability,
		Notifier:     notifier,
		Metrics:      metrics.NewHTTPMetrics(cfg.ServiceName),
	})
	if cfg.Environment != "production" {
		printRoutes(r)
	}

	zlog.Info("starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
