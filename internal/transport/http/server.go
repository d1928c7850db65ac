package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neighborly/engage/internal/cache"
	"github.com/neighborly/engage/internal/config"
	"github.com/neighborly/engage/internal/database"
	"github.com/neighborly/engage/internal/handler"
	"github.com/neighborly/engage/internal/notify"
	appredis "github.com/neighborly/engage/internal/redis"
	"github.com/neighborly/engage/internal/repository"
	"github.com/neighborly/engage/internal/service"
	"github.com/neighborly/engage/internal/validation"
	"github.com/neighborly/engage/internal/worker"
)

// Run wires the engagement engine together and serves it until SIGINT
// or SIGTERM. The HTTP server and the notifier workers share one
// process; both drain before the connections close.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis (notifier stream, fan-out channels, summary cache)
	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStartup()
	if err := redisClient.Ping(startupCtx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 4. Repositories
	oracle := repository.NewContentOracle(db)
	userRepo := repository.NewUserRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	commentReactionRepo := repository.NewCommentReactionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	shareRepo := repository.NewShareRepository(db)

	// 5. Notifier plumbing and cache
	publisher := notify.NewPublisher(redisClient.Client)
	consumer := notify.NewConsumer(redisClient.Client)
	summaryCache := cache.NewSummaryCache(redisClient.Client, time.Duration(cfg.SummaryCacheTTL)*time.Second)

	// 6. Services
	reactionService := service.NewReactionService(oracle, reactionRepo, commentReactionRepo, publisher)
	commentService := service.NewCommentService(oracle, commentRepo, commentReactionRepo, userRepo, publisher)
	attendanceService := service.NewAttendanceService(oracle, attendanceRepo, publisher)
	shareService := service.NewShareService(oracle, shareRepo, publisher)
	summaryService := service.NewSummaryService(oracle, reactionRepo, commentRepo, shareRepo, summaryCache)

	// 7. Handlers
	validator := validation.New()
	reactionHandler := handler.NewReactionHandler(reactionService, validator)
	commentHandler := handler.NewCommentHandler(commentService, validator)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, validator)
	shareHandler := handler.NewShareHandler(shareService)
	summaryHandler := handler.NewSummaryHandler(summaryService)

	// 8. Notifier workers (stream -> per-target channels + cache invalidation)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	eventHandler := worker.NewHandler(worker.NewRedisChannelPublisher(redisClient.Client), summaryCache)
	managerCfg := worker.DefaultManagerConfig()
	managerCfg.WorkerCount = cfg.WorkerCount
	manager := worker.NewManager(consumer, eventHandler, managerCfg)
	if err := manager.Start(workerCtx); err != nil {
		return fmt.Errorf("failed to start notifier workers: %w", err)
	}

	// 9. HTTP server
	router := NewRouter(RouterConfig{
		ReactionHandler:   reactionHandler,
		CommentHandler:    commentHandler,
		AttendanceHandler: attendanceHandler,
		ShareHandler:      shareHandler,
		SummaryHandler:    summaryHandler,
		JWTSecret:         cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		manager.Stop()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	manager.Stop()
	return nil
}
