package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reception-dedup/config"
	"reception-dedup/oplog"
	"reception-dedup/services"
	"reception-dedup/storage"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	if cfg.Debug {
		if dev, err := zap.NewDevelopment(); err == nil {
			logging = dev
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		logging.Fatal("Invalid display timezone", zap.Error(err))
	}

	// Setup Database Connection
	db, err := storage.OpenPostgres(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to reception database", zap.Error(err))
	}
	store := storage.NewGormStore(db)

	opLog, err := oplog.New(oplog.Options{
		Dir:         cfg.LogDir,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		BackupCount: cfg.LogBackupCount,
	})
	if err != nil {
		logging.Fatal("Failed to open operation log", zap.Error(err))
	}
	defer opLog.Close()

	// Setup Services
	dataService := services.NewDataService(store, loc, logging)
	duplicateService := services.NewDuplicateService(store, loc, logging)
	mutationService := services.NewMutationService(store, dataService, opLog, loc, logging)

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 5*time.Second)
	if dataService.Healthy(probeCtx) {
		logging.Info("Successfully connected to reception database.")
	} else {
		logging.Warn("Reception database not reachable at startup, continuing.")
	}
	cancelProbe()

	// Setup Cron
	if cfg.ReportCronSchedule != "" {
		reportService, err := newReportService(cfg, duplicateService, logging)
		if err != nil {
			logging.Fatal("Report setup failed", zap.Error(err))
		}
		cronScheduler := cron.New()
		_, err = cronScheduler.AddFunc(cfg.ReportCronSchedule, func() {
			logging.Info("Running scheduled duplicate report...")
			if _, err := reportService.Run(context.Background()); err != nil {
				logging.Error("Duplicate report failed", zap.Error(err))
			}
		})
		if err != nil {
			logging.Fatal("Invalid REPORT_CRON_SCHEDULE", zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	// Setup Router
	router := newRouter(routerDeps{
		Data:           dataService,
		Duplicates:     duplicateService,
		Mutations:      mutationService,
		Location:       loc,
		Logger:         logging,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
}

// newReportService verdrahtet den Report-Job; ohne Bucket wird nur protokolliert.
func newReportService(cfg *config.Config, dups *services.DuplicateService, logging *zap.Logger) (*services.ReportService, error) {
	var uploader storage.Uploader
	if cfg.ReportUploadEnabled() {
		client, err := storage.NewReportS3Client(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		uploader = client
	} else {
		logging.Info("Report upload disabled (REPORT_S3_URL/REPORT_S3_BUCKET not set)")
	}
	return services.NewReportService(dups, uploader, cfg.ReportS3URL, cfg.ReportS3Bucket, logging), nil
}
