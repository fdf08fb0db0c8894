package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/careslot/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/notify"
	pgrepo "github.com/dmehra2102/prod-golang-projects/careslot/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting careslot api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	collector := metrics.NewCollector("careslot")

	availabilityRepo := pgrepo.NewAvailabilityRepository(db)
	appointmentRepo := pgrepo.NewAppointmentRepository(db)
	ledgerRepo := pgrepo.NewLedgerRepository(db, log).
		WithMaxRetries(cfg.Scheduling.LedgerMaxRetries)
	directory := pgrepo.NewDoctorDirectory(db)

	var sink notify.Sink = notify.LogSink(log)
	var kafkaSink *notify.KafkaSink
	if cfg.Kafka.Enabled {
		kafkaSink = notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sink = kafkaSink
		log.Info("kafka notification sink enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	dispatcher := notify.NewDispatcher(sink, log,
		notify.WithBufferSize(cfg.Scheduling.DispatchBufferSize),
		notify.WithDropCounter(collector.NotificationsDropped),
	)

	schedulingSvc := service.NewSchedulingService(
		availabilityRepo, appointmentRepo, ledgerRepo, directory, dispatcher, log)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, log)

	jwtManager := auth.NewJWTManager(cfg.JWT)

	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Logger:       log,
		Collector:    collector,
		JWTManager:   jwtManager,
		Scheduling:   v1.NewSchedulingHandler(schedulingSvc, collector),
		Availability: v1.NewAvailabilityHandler(availabilitySvc),
	})

	poolCtx, stopPoolGauge := context.WithCancel(context.Background())
	defer stopPoolGauge()
	go reportDBConnections(poolCtx, db, collector)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	// Drain queued notifications once no new requests can enqueue more.
	dispatcher.Shutdown()
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Warn("kafka sink close failed", zap.Error(err))
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("shutdown complete")
}

func reportDBConnections(ctx context.Context, db *gorm.DB, collector *metrics.Collector) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}
}
