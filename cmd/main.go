package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/adapter/postgres"
	"github.com/staffclock/attendance/internal/adapter/rabbitmq"
	"github.com/staffclock/attendance/internal/app/admission"
	"github.com/staffclock/attendance/internal/app/history"
	"github.com/staffclock/attendance/internal/app/qrtoken"
	"github.com/staffclock/attendance/internal/app/worksession"
	"github.com/staffclock/attendance/internal/config"

	amqpAdapter "github.com/staffclock/attendance/internal/adapter/amqp"
	httpAdapter "github.com/staffclock/attendance/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: attendance-service, event-subscriber")
	port := flag.Int("port", 3000, "HTTP port")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	lgr := logger.New(*mode)

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "attendance-service":
		runAttendanceService(db, mqConn, lgr, cfg, *port)

	case "event-subscriber":
		runEventSubscriber(ctx, mqConn, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAttendanceService(db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, cfg *config.Config, port int) {
	qrRepo := postgres.NewQRCodeRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	publisher := rabbitmq.NewPublisher(mqConn)

	tokenService := qrtoken.NewService(qrRepo, lgr)
	policy := admission.NewPolicy(scheduleRepo)
	historyService := history.NewService(eventRepo, lgr, cfg.Attendance.HistoryPageSize)
	sessionService := worksession.NewService(
		sessionRepo, settingsRepo, tokenService, policy, publisher, lgr,
		cfg.Attendance.DefaultBreakMinutes,
	)

	attendanceHandler := httpAdapter.NewAttendanceHandler(sessionService, historyService, lgr)
	qrHandler := httpAdapter.NewQRHandler(tokenService, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/attendance/clock-in", attendanceHandler.ClockIn)
	mux.HandleFunc("/attendance/clock-out", attendanceHandler.ClockOut)
	mux.HandleFunc("/attendance/status", attendanceHandler.Status)
	mux.HandleFunc("/attendance/history", attendanceHandler.History)
	mux.HandleFunc("/attendance/qr", qrHandler.CurrentToken)
	mux.HandleFunc("/attendance/qr/rotate", qrHandler.Rotate)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Attendance Service started on port %d", port), "startup", map[string]interface{}{
		"port": port,
	})

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down Attendance Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runEventSubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger) {
	consumer := rabbitmq.NewConsumer(mqConn)
	eventHandler := amqpAdapter.NewEventHandler(lgr)

	lgr.Info("service_started", "Event Subscriber started", "startup", nil)

	go func() {
		if err := consumer.ConsumeAttendanceEvents(ctx, eventHandler.HandleEvent); err != nil {
			lgr.Error("consumer_error", "Error consuming attendance events", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down Event Subscriber", "shutdown", nil)
}
