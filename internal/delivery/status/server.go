// Package status serves a local health and diagnostics endpoint.
package status

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"studybuddy/config"
	"studybuddy/internal/delivery"
	"studybuddy/internal/delivery/middleware"
	"studybuddy/internal/domain/lifecycle"
	"studybuddy/internal/usecase"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type statusServer struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *echo.Echo
	session   usecase.SessionUsecase
	reminders usecase.ReminderUsecase
}

// ServerParams holds dependencies for the status server.
type ServerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	Session   usecase.SessionUsecase
	Reminders usecase.ReminderUsecase
}

// NewServer creates the local status HTTP server.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())

	requestIDMiddleware := middleware.NewRequestIDMiddleware(params.Logger)
	e.Use(requestIDMiddleware.Process)

	loggerMiddleware := middleware.NewLoggerMiddleware(params.Logger, params.Cfg)
	e.Use(loggerMiddleware.Handle)

	srv := &statusServer{
		cfg:       params.Cfg,
		logger:    params.Logger,
		server:    e,
		session:   params.Session,
		reminders: params.Reminders,
	}

	e.GET("/health", srv.handleHealth)
	e.GET("/status", srv.handleStatus)

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve starts the status HTTP server. A disabled server parks until
// shutdown so the delivery group stays uniform.
func (s *statusServer) Serve(ctx context.Context) error {
	if s.cfg.Status == nil || !s.cfg.Status.Enabled {
		s.logger.Info("Status server disabled")
		<-ctx.Done()
		return nil
	}

	if t := s.cfg.Status.Timeouts; t.ReadTimeout > 0 {
		s.server.Server.ReadTimeout = t.ReadTimeout
		s.server.Server.ReadHeaderTimeout = t.ReadHeaderTimeout
		s.server.Server.WriteTimeout = t.WriteTimeout
		s.server.Server.IdleTimeout = t.IdleTimeout
	}

	hostPort := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.cfg.Status.Port))
	s.logger.Info("Starting status server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *statusServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down status server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}

func (s *statusServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	State            string     `json:"state"`
	UserID           string     `json:"userId,omitempty"`
	Email            string     `json:"email,omitempty"`
	TokenExpiresAt   *time.Time `json:"tokenExpiresAt,omitempty"`
	PendingReminders int        `json:"pendingReminders"`
}

func (s *statusServer) handleStatus(c echo.Context) error {
	session := s.session.Current()

	resp := statusResponse{State: session.State.String()}
	if session.User != nil {
		resp.UserID = session.User.ID
		resp.Email = session.User.Email
	}
	if expiry, ok := s.session.TokenExpiry(); ok {
		resp.TokenExpiresAt = &expiry
	}

	pending, err := s.reminders.Pending(c.Request().Context())
	if err != nil {
		s.logger.Warn("Failed to count pending reminders", slog.Any("error", err))
	}
	resp.PendingReminders = len(pending)

	return c.JSON(http.StatusOK, resp)
}
