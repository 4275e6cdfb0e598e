package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/agro-payroll/internal/config"
	"github.com/cmlabs-hris/agro-payroll/internal/handler/http/middleware"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions carries what the router needs besides the handlers.
type RouterOptions struct {
	App           config.AppConfig
	FilesBasePath string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	requestLogger := logger.New(os.Stdout, opts.App)

	origins := opts.App.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(requestLogger, &httplog.Options{
		Level:  logger.ParseLevel(opts.App.LogLevel),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payrolls/{id}", func(r chi.Router) {
				r.Post("/calculate", payrollHandler.Calculate)
				r.Post("/payslips", payrollHandler.GeneratePayslips)
				r.Get("/executions", payrollHandler.ListExecutions)
			})

			if opts.FilesBasePath != "" {
				fs := http.StripPrefix("/api/v1/files/", http.FileServer(http.Dir(opts.FilesBasePath)))
				r.Get("/files/*", fs.ServeHTTP)
			}
		})
	})

	slog.Debug("HTTP: Router initialized", "files", opts.FilesBasePath != "")
	return r
}
