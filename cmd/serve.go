package cmd

import (
	"context"
	"database/sql"
	"net"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/posturease/ms-go-account/app/controller"
	"github.com/posturease/ms-go-account/app/middleware"
	"github.com/posturease/ms-go-account/app/notification"
	"github.com/posturease/ms-go-account/app/repository"
	"github.com/posturease/ms-go-account/app/service"
	"github.com/posturease/ms-go-account/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server exposing account, verification and posture-record endpoints.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogging(cfg)

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	caps, err := repository.DetectCapabilities(context.Background(), db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to detect schema capabilities")
	}

	userRepo := repository.NewUserRepository(db, caps)
	postureRepo := repository.NewPostureRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)

	var mailer notification.Mailer
	if cfg.SMTP.Enabled() {
		mailer = notification.NewSMTPMailer(cfg.SMTP, cfg.BaseURL)
	} else {
		mailer = notification.NewLogMailer()
	}

	hasher := service.NewPasswordHasher()
	accounts := service.NewAccountService(db, userRepo, hasher, cfg)
	verification := service.NewVerificationService(userRepo, mailer, hasher, cfg)
	posture := service.NewPostureService(postureRepo, exerciseRepo, cfg.ValidatePostureRanges)

	startHTTPServer(cfg, accounts, verification, posture)
}

func startHTTPServer(cfg *config.Config, accounts *service.AccountService, verification *service.VerificationService, posture *service.PostureService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authController := controller.NewAuthController(accounts, verification)
	userController := controller.NewUserController(accounts)
	postureController := controller.NewPostureController(posture)
	authMiddleware := middleware.NewAuthMiddleware(accounts)

	auth := e.Group("/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.GET("/verify-email", authController.VerifyEmail)
	auth.POST("/request-password-change", authController.RequestPasswordChange)
	auth.GET("/verify-password-change", authController.ValidatePasswordChange)
	auth.POST("/complete-password-change", authController.CompletePasswordChange)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth)
	authProtected.POST("/resend-verification", authController.ResendVerification)
	authProtected.POST("/change-password", authController.ChangePassword)

	profile := e.Group("/profile", authMiddleware.RequireAuth)
	profile.PUT("", userController.UpdateProfile)

	admin := e.Group("/admin", authMiddleware.RequireAuth, authMiddleware.RequireAdmin)
	admin.GET("/users", userController.List)
	admin.DELETE("/users/:id", userController.Delete)
	admin.PUT("/users/:id/status", userController.SetStatus)

	records := e.Group("/posture", authMiddleware.RequireAuth)
	records.POST("/records", postureController.Append)
	records.GET("/records", postureController.History)
	records.DELETE("/records/:id", postureController.DeleteRecord)
	records.DELETE("/records", postureController.ClearHistory)
	records.GET("/exercises", postureController.ListExercises)
	records.POST("/exercises/completions", postureController.CompleteExercise)
	records.GET("/exercises/completions", postureController.CompletedExercises)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
