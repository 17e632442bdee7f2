package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stillmind/wellbeing-api/internal/config"
	"github.com/stillmind/wellbeing-api/internal/database"
	"github.com/stillmind/wellbeing-api/internal/engine"
	"github.com/stillmind/wellbeing-api/internal/logger"
	"github.com/stillmind/wellbeing-api/internal/notify"
	"github.com/stillmind/wellbeing-api/internal/queue"
	"github.com/stillmind/wellbeing-api/internal/workers"
)

// schedulerInterval controls how often the periodic analysis scheduler fans
// out delayed jobs. Jobs are delayed to the fixed run times, so running the
// scheduler more often than twice a day only re-enqueues duplicates.
const schedulerInterval = 12 * time.Hour

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for verbose logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
	)

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Initialize repositories
	sessionRepo := database.NewSessionRepository(db)
	moodRepo := database.NewMoodRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	alertRepo := database.NewAlertRepository(db)
	userRepo := database.NewUserRepository(db)

	// Initialize RabbitMQ queue
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_rabbitmq",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Load intervention rules (built-in defaults unless overridden)
	rules := engine.DefaultRules()
	if cfg.RulesPath != "" {
		rules, err = engine.LoadRules(cfg.RulesPath)
		if err != nil {
			zapLogger.Fatal("failed_to_load_intervention_rules",
				zap.String("path", cfg.RulesPath),
				zap.Error(err),
			)
		}
		zapLogger.Info("loaded_intervention_rules", zap.String("path", cfg.RulesPath))
	}

	// Assemble the analysis engine
	notifier := notify.NewQueueNotifier(jobQueue, zapLogger)
	reminders := notify.NewQueueReminderScheduler(jobQueue, zapLogger)
	alertGen := engine.NewAlertGenerator(alertRepo, notifier, rules, zapLogger)
	historyReader := database.NewHistoryReader(sessionRepo, moodRepo)
	analysisEngine := engine.New(historyReader, scheduleRepo, alertGen, reminders, zapLogger)

	// Create the job monitor
	monitor := workers.NewMonitor(
		analysisEngine,
		workers.NewLogDispatcher(zapLogger),
		jobQueue,
		zapLogger,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Periodic analysis scheduler (morning and evening runs for active users)
	scheduler := workers.NewAnalysisScheduler(jobQueue, userRepo, zapLogger)
	if err := scheduler.ScheduleAnalysisJobs(ctx); err != nil {
		zapLogger.Error("initial_analysis_scheduling_failed", zap.Error(err))
	}
	go func() {
		if err := scheduler.Run(ctx, schedulerInterval); err != nil && err != context.Canceled {
			zapLogger.Error("analysis_scheduler_stopped_with_error", zap.Error(err))
		}
	}()

	// DLQ garbage collector: run every hour, retain messages for 24 hours
	dlqGC := queue.NewGarbageCollector(jobQueue, 1*time.Hour, 24*time.Hour)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming_messages", zap.Error(err))
	}

	zapLogger.Info("worker_started_consuming_messages")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				// Process job
				if err := monitor.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("shutdown_signal_received_stopping_worker")

	// Cancel context to stop processing
	cancel()

	zapLogger.Info("worker_stopped")
}
