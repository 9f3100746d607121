package daemon

import (
	"context"
	"errors"
	"hotbackup/internal/logger"
	"hotbackup/internal/logreader"
	"hotbackup/internal/metrics"
	"hotbackup/internal/model"
	"hotbackup/internal/repository"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const defaultLimit = 20

type Server struct {
	echo     *echo.Echo
	runner   *Runner
	reader   *logreader.Reader
	histRepo *repository.HistoryRepository
	port     int
	stopCh   chan struct{}
}

type ServerOption func(*Server)

func WithHistory(repo *repository.HistoryRepository) ServerOption {
	return func(s *Server) {
		s.histRepo = repo
	}
}

func WithMetricsEndpoint(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.echo.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

func NewServer(runner *Runner, reader *logreader.Reader, port int, opts ...ServerOption) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		runner: runner,
		reader: reader,
		port:   port,
		stopCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)
	s.echo.GET("/history", s.handleHistory)
	s.echo.GET("/log", s.handleLog)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() {
	go func() {
		addr := "localhost:" + strconv.Itoa(s.port)
		logger.Log.Info("status server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("status server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.runner.Snapshot())
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

type historyResponse struct {
	Stats   repository.Stats `json:"stats"`
	Entries []model.History  `json:"entries"`
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.histRepo == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "history disabled"})
	}

	n := queryLimit(c)

	var (
		histories []model.History
		err       error
	)
	if c.QueryParam("failed") == "true" {
		histories, err = s.histRepo.GetFailed()
	} else {
		histories, err = s.histRepo.GetRecent(n)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	stats, err := s.histRepo.GetStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, historyResponse{Stats: stats, Entries: histories})
}

func (s *Server) handleLog(c echo.Context) error {
	m := logreader.All()
	if term := c.QueryParam("q"); term != "" {
		m = logreader.Contains(term)
	}
	if expr := c.QueryParam("re"); expr != "" {
		var err error
		m, err = logreader.Regex(expr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}

	lines, err := s.reader.Collect(m, queryLimit(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if lines == nil {
		lines = []string{}
	}

	return c.JSON(http.StatusOK, map[string]any{"lines": lines})
}

func queryLimit(c echo.Context) int {
	n := defaultLimit
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil {
			n = parsed
		}
	}

	return n
}
