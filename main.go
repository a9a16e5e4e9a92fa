package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linguahub/config"
	"linguahub/cron"
	"linguahub/database"
	adminRepo "linguahub/database/repository/admin"
	blockRepo "linguahub/database/repository/block"
	interpreterRepo "linguahub/database/repository/interpreter"
	orderRepo "linguahub/database/repository/order"
	userRepo "linguahub/database/repository/user"
	"linguahub/handlers"
	"linguahub/routes"
	"linguahub/services/notification"
	"linguahub/services/search"
	"linguahub/services/tasks"
	"linguahub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	cacheClient := utils.GetCacheClient()
	fcm := utils.FirebaseInit()
	db := database.DB()

	// repositories.
	interpreters := interpreterRepo.NewMongoInterpreterRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := interpreters.EnsureIndexes(ctx); err != nil {
		logger.Fatal("main: failed to ensure interpreter indexes", zap.Error(err))
	}
	cancel()
	orders := orderRepo.NewMongoOrderRepo(db)
	admins := adminRepo.NewMongoAdminRepo(db)
	blocks := blockRepo.NewMongoBlockRepo(db)
	tokens := userRepo.NewMongoDeviceTokenRepo(db)

	// services.
	notifier, err := notification.NewDefaultNotificationService(tokens, fcm, logger.Named("notification"))
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	runLock := &search.RedisRunLock{Client: cacheClient}
	dispatcher := search.NewInvitationDispatcher(
		notifier,
		config.AppConfig.AcceptLinkBaseURL,
		config.AppConfig.InvitationConcurrency,
		config.AppConfig.InvitationRatePerSec,
		logger.Named("invitations"),
	)
	engine := &search.DefaultSearchEngine{
		Store:    interpreters,
		Blocks:   blocks,
		Notifier: notifier,
		Escalation: &search.EscalationReporter{
			AdminInfo: admins,
			Admins:    admins,
			Notifier:  notifier,
			Logger:    logger.Named("escalation"),
		},
		Invitations: dispatcher,
		Results: &search.ResultPersistence{
			Writer: orders,
			Lock:   runLock,
			Logger: logger.Named("persistence"),
		},
		Logger:       logger.Named("search"),
		RestartDelay: config.AppConfig.SearchRestartDelay,
	}
	trigger := &search.Trigger{
		Orders:  orders,
		Engine:  engine,
		Lock:    runLock,
		LockTTL: config.AppConfig.SearchLockTTL,
		Logger:  logger.Named("trigger"),
	}

	// background search: queue, worker and sweep.
	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()
	searchQueue := tasks.NewSearchQueue(queueClient, time.Minute)

	worker := cron.InitSearchWorker(trigger, logger.Named("worker"))
	sweeper := cron.NewSearchSweeper(orders, searchQueue, logger.Named("sweeper"),
		config.AppConfig.SearchSweepCron, 500)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("main: failed to start search sweeper", zap.Error(err))
	}

	inspector := asynq.NewInspector(cron.QueueRedisOpt())
	defer inspector.Close()
	queueRedis := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	utils.StartHealthMonitor(utils.HealthProbe{
		RedisClients: []*redis.Client{cacheClient, queueRedis},
		MongoClient:  database.MongoClient,
		Inspector:    inspector,
		Queue:        tasks.QueueSearch,
	}, time.Minute)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	searchHandler := handlers.NewSearchHandler(orders, searchQueue, logger.Named("http"))
	routes.RegisterRoutes(router, searchHandler, routes.Options{
		AllowedOrigins:    config.AppConfig.CORSAllowedOrigins,
		OpsSecret:         []byte(config.AppConfig.OpsJWTSecret),
		MaxRequestsPerMin: config.AppConfig.MaxRequestsPerMin,
		Logger:            logger.Named("http"),
	})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	sweeper.Stop()
	worker.Shutdown()
	dispatcher.Wait()

	if err := database.MongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}
	logger.Sugar().Info("main: server stopped gracefully")
}
