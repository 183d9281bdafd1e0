package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DevN0mad/ShiftBot/internal/services"
)

const APIv1Prefix = "/api/v1"

// ServerOpts параметры для настройки http сервера панели.
type ServerOpts struct {
	Address             string `mapstructure:"address" validate:"required"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"min=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"min=0"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds" validate:"min=0"`
}

// Server отдаёт данные панели графика по http.
type Server struct {
	logger    *slog.Logger
	opts      *ServerOpts
	srv       *http.Server
	dashboard *services.DashboardService
	report    *services.ReportService
}

// NewServer создаёт http сервер панели.
func NewServer(logger *slog.Logger, dashboard *services.DashboardService, report *services.ReportService, opts *ServerOpts) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		opts:      opts,
		dashboard: dashboard,
		report:    report,
	}
}

// Router собирает маршруты API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger(s.logger))

	r.Route(APIv1Prefix, func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/shifts/current", s.handleCurrentShift)
		r.Get("/shifts/next", s.handleNextShift)
		r.Get("/workload", s.handleWorkload)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/schedule", s.handleSchedule)
		r.Get("/report", s.handleReport)
		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

// Start запускает http сервер и останавливает его при отмене контекста.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting http server", "address", s.opts.Address)
	s.srv = &http.Server{
		Addr:         s.opts.Address,
		ReadTimeout:  time.Duration(s.opts.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.opts.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(s.opts.IdleTimeoutSeconds) * time.Second,
		Handler:      s.Router(),
	}

	go func() {
		<-ctx.Done()

		s.logger.Info("Shutting down http server (ctx canceled)")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Http server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Http server error", "error", err)
		return err
	}

	s.logger.Info("Http server stopped")
	return nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("Http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
