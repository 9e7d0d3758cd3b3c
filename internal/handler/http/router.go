package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/middleware"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/jwt"
)

type Handlers struct {
	Auth           AuthHandler
	Attendance     AttendanceHandler
	UserAttendance UserAttendanceHandler
	User           UserHandler
	Admin          UserHandler
	Settings       SettingsHandler
}

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	// StorageDir is served under /storage when set (local storage only).
	StorageDir string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Logger defaults to a JSON logger on stdout.
	Logger *slog.Logger
}

func NewRouter(JWTService jwt.Service, opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		})).With(
			slog.String("app", "presensi"),
			slog.String("version", "v1.0.0"),
			slog.String("env", opts.Env),
		)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.StorageDir != "" {
		r.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(opts.StorageDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/attendances", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Post("/", h.Attendance.Submit)
				r.Get("/current", h.Attendance.Current)
			})

			r.Route("/user-attendances", func(r chi.Router) {
				r.Get("/", h.UserAttendance.List)
				r.Post("/", h.UserAttendance.Create)
				r.Get("/{id}", h.UserAttendance.Get)
				r.Post("/{id}/validate", h.UserAttendance.Validate)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.User.Get)
					r.Put("/", h.User.Update)
					r.Delete("/", h.User.Delete)
					r.Post("/reset-password", h.User.ResetPassword)
					r.Post("/photos", h.User.ReplacePhotos)
				})
			})

			r.Route("/admins", func(r chi.Router) {
				r.Get("/", h.Admin.List)
				r.Post("/", h.Admin.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Admin.Get)
					r.Put("/", h.Admin.Update)
					r.Delete("/", h.Admin.Delete)
					r.Post("/reset-password", h.Admin.ResetPassword)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Patch("/profile", h.Settings.UpdateProfile)
				r.Delete("/profile", h.Settings.DeleteProfile)
				r.Put("/password", h.Settings.ChangePassword)
				r.Route("/photos", func(r chi.Router) {
					r.Get("/", h.Settings.ListPhotos)
					r.Post("/", h.Settings.ReplacePhotos)
				})
			})
		})
	})
	return r
}
