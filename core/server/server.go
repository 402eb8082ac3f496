package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baybook/core/cache"
	"baybook/core/config"
	"baybook/core/constants"
	"baybook/core/database"
	"baybook/core/logger"
	"baybook/core/middleware"
	"baybook/core/tasks"
	"baybook/core/utils"
	"baybook/core/validator"
	"baybook/modules/bay"
	"baybook/modules/booking"
	bookingtask "baybook/modules/booking/task"
	"baybook/modules/membership"
	"baybook/modules/notification"
	"baybook/modules/payment"
	paymentcontroller "baybook/modules/payment/controller"
	paymentrouter "baybook/modules/payment/router"
	"baybook/modules/slot"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Server owns every process-wide resource: HTTP listener, database handle,
// redis cache, task worker and scheduler. Everything is constructed here and
// passed down; nothing hangs off package globals.
type Server struct {
	cfg        *config.Config
	echo       *echo.Echo
	db         database.Database
	cache      cache.Cache
	taskClient *asynq.Client
	taskServer *asynq.Server
	scheduler  *asynq.Scheduler
	taskMux    *asynq.ServeMux
}

func New(cfg *config.Config) (*Server, error) {
	logger.Init(cfg.Logging.Level)
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache := cache.NewRedisCache(cfg.Redis)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	mw := middleware.NewMiddleware()
	taskClient := tasks.NewClient(cfg.Redis)
	taskMux := asynq.NewServeMux()

	bay.Init(e, db, mw)
	slotModule := slot.Init(e, db, mw)
	membershipModule := membership.Init(e, db, mw, cfg.Payment)
	notificationModule := notification.Init(e, db, mw, taskClient, taskMux, cfg.Email)

	gateway := payment.NewStripeGateway(cfg.Payment)
	bookingModule := booking.Init(e, db, mw,
		slotModule.Repository, membershipModule.Service, notificationModule.Service, gateway)
	taskMux.Handle(bookingtask.TypeBookingCleanup, bookingModule.CleanupHandler)

	webhookController := paymentcontroller.NewWebhookController(
		cfg.Payment.WebhookSecret, redisCache, bookingModule.Service, membershipModule.Service)
	paymentrouter.RegisterRoutes(e, webhookController)

	scheduler := tasks.NewScheduler(cfg.Redis)
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %s", constants.CleanupInterval), bookingtask.NewCleanupTask()); err != nil {
		return nil, fmt.Errorf("failed to register cleanup schedule: %w", err)
	}

	return &Server{
		cfg:        cfg,
		echo:       e,
		db:         db,
		cache:      redisCache,
		taskClient: taskClient,
		taskServer: tasks.NewServer(cfg.Redis),
		scheduler:  scheduler,
		taskMux:    taskMux,
	}, nil
}

// Run starts the HTTP listener, the task worker and the scheduler, then
// blocks until SIGINT/SIGTERM and shuts everything down in reverse order.
func (s *Server) Run() error {
	go func() {
		if err := s.taskServer.Run(s.taskMux); err != nil {
			logger.Error("Server:TaskServer", err)
		}
	}()
	go func() {
		if err := s.scheduler.Run(); err != nil {
			logger.Error("Server:Scheduler", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	go func() {
		logger.Info("Server:Start", "addr", addr)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:Shutdown:Start")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		logger.Error("Server:Shutdown:HTTP", err)
	}
	s.scheduler.Shutdown()
	s.taskServer.Shutdown()
	if err := s.taskClient.Close(); err != nil {
		logger.Error("Server:Shutdown:TaskClient", err)
	}
	if err := s.cache.Close(); err != nil {
		logger.Error("Server:Shutdown:Cache", err)
	}
	if err := s.db.Close(); err != nil {
		logger.Error("Server:Shutdown:Database", err)
	}

	logger.Info("Server:Shutdown:Done")
	return nil
}
