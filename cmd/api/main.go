package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/config"
	appHTTP "github.com/presensi-app/attendance-backend-go/internal/handler/http"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/cron"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/database"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/facerecognition"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/jwt"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/lock"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/metrics"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/storage"
	"github.com/presensi-app/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/presensi-app/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/presensi-app/attendance-backend-go/internal/service/auth"
	mediaService "github.com/presensi-app/attendance-backend-go/internal/service/media"
	photoService "github.com/presensi-app/attendance-backend-go/internal/service/photo"
	userService "github.com/presensi-app/attendance-backend-go/internal/service/user"
	"github.com/presensi-app/attendance-backend-go/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", "presensi"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, migrations.FS); err != nil {
		log.Fatal("Error applying migrations:", err)
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal("Invalid timezone:", err)
	}

	var fileStorage storage.FileStorage
	var storageDir string
	switch cfg.Storage.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
		fileStorage = local
		storageDir = local.BasePath()
	case "s3":
		fileStorage, err = storage.NewS3Storage(ctx, storage.S3Options{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
		})
		if err != nil {
			log.Fatal("Failed to initialize s3 storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type:", cfg.Storage.Type)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	faceClient := facerecognition.NewClient(cfg.FaceRecognition.BaseURL, cfg.FaceRecognition.Timeout, appMetrics)

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Redis.Addr != "" {
		redisClient, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Error connecting to redis:", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, "attendance:")
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.App.Env == "production")
	if err != nil {
		log.Fatal("Failed to initialize jwt service:", err)
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	mediaRepo := postgresql.NewMediaRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)

	mediaSvc := mediaService.NewMediaService(mediaRepo, fileStorage, txManager)
	photoSvc := photoService.NewPhotoService(faceClient, mediaSvc, appMetrics)
	userSvc := userService.NewUserService(txManager, userRepo, mediaSvc, photoSvc)
	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		userRepo,
		mediaSvc,
		faceClient,
		locker,
		appMetrics,
		attendanceService.WithLocation(location),
	)
	authService := serviceAuth.NewAuthService(txManager, userRepo, JWTService, JWTRepository, mediaSvc)

	created, err := userService.EnsureSuperAdmin(ctx, userRepo, cfg.App.SuperAdminEmail, cfg.App.SuperAdminPassword)
	if err != nil {
		log.Fatal("Failed to create super admin:", err)
	}
	if created {
		slog.Info("Super admin account created", "email", cfg.App.SuperAdminEmail)
	}

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(JWTRepository, 7*24*time.Hour).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		StorageDir:     storageDir,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, appHTTP.Handlers{
		Auth:           appHTTP.NewAuthHandler(JWTService, authService),
		Attendance:     appHTTP.NewAttendanceHandler(attendanceSvc),
		UserAttendance: appHTTP.NewUserAttendanceHandler(attendanceSvc),
		User:           appHTTP.NewUserHandler(userSvc, photoSvc),
		Admin:          appHTTP.NewAdminHandler(userSvc),
		Settings:       appHTTP.NewSettingsHandler(userSvc, photoSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
