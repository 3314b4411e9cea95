package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"syncd/internal/engine"
	"syncd/internal/logger"
	"syncd/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type HistoryReader interface {
	GetRecent(limit int) ([]model.History, error)
	GetFailed(limit int) ([]model.History, error)
	GetStats() (model.HistoryStats, error)
}

type Server struct {
	echo    *echo.Echo
	state   *State
	signal  *engine.Signal
	history HistoryReader
	port    int
}

// NewServer serves status for one running engine. history may be nil when
// the history database is disabled.
func NewServer(state *State, signal *engine.Signal, history HistoryReader, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		state:   state,
		signal:  signal,
		history: history,
		port:    port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.GET("/history", s.handleHistory)
	s.echo.GET("/history/stats", s.handleHistoryStats)
	s.echo.POST("/sync", s.handleSync)
}

func (s *Server) Start() {
	go func() {
		addr := "localhost:" + strconv.Itoa(s.port)
		logger.Log.Info("daemon server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("daemon server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleSync(c echo.Context) error {
	s.signal.Mark()
	logger.Log.Info("manual sync requested")
	return c.JSON(http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "history is disabled"})
	}

	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid n"})
		}
		n = parsed
	}

	get := s.history.GetRecent
	if failed, _ := strconv.ParseBool(c.QueryParam("failed")); failed {
		get = s.history.GetFailed
	}

	histories, err := get(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, histories)
}

func (s *Server) handleHistoryStats(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "history is disabled"})
	}

	stats, err := s.history.GetStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, stats)
}
