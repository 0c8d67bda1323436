// Package httpapi exposes the memory engine over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/pkg/config"
	"github.com/fyrsmithlabs/recall/internal/llm"
	"github.com/fyrsmithlabs/recall/internal/vectorstore"
	"github.com/fyrsmithlabs/recall/pkg/conversation"
	"github.com/fyrsmithlabs/recall/pkg/memory"
)

// MemoryEngine is the subset of the engine the server uses.
type MemoryEngine interface {
	Add(ctx context.Context, messages []conversation.Message, opts ...memory.ScopeOption) ([]memory.Memory, error)
	Search(ctx context.Context, query string, k int, opts ...memory.ScopeOption) ([]memory.SearchResult, error)
}

// Server provides the HTTP endpoints for remembering and searching.
type Server struct {
	echo   *echo.Echo
	engine MemoryEngine
	cfg    config.ServerConfig
	logger *zap.Logger
}

// NewServer creates the HTTP server around an engine.
func NewServer(engine MemoryEngine, cfg config.ServerConfig, logger *zap.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:   e,
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)

	v1 := s.echo.Group("/v1")
	v1.POST("/memories", s.handleAdd)
	v1.GET("/memories/search", s.handleSearch)
}

// AddRequest is the body for POST /v1/memories.
type AddRequest struct {
	Messages []conversation.Message `json:"messages"`
	UserID   string                 `json:"user_id,omitempty"`
	AgentID  string                 `json:"agent_id,omitempty"`
}

// AddResponse lists the memories persisted by the call.
type AddResponse struct {
	Memories []memory.Memory `json:"memories"`
}

// SearchResponse lists search hits in descending similarity.
type SearchResponse struct {
	Results []memory.SearchResult `json:"results"`
}

// HealthResponse is the body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleAdd(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid add request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages field is required")
	}

	added, err := s.engine.Add(c.Request().Context(), req.Messages, scopeOpts(req.UserID, req.AgentID)...)
	if err != nil {
		return s.mapError(err)
	}
	if added == nil {
		added = []memory.Memory{}
	}
	return c.JSON(http.StatusCreated, AddResponse{Memories: added})
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q parameter is required")
	}

	k := 5
	if raw := c.QueryParam("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be an integer")
		}
		k = parsed
	}

	results, err := s.engine.Search(c.Request().Context(), query, k,
		scopeOpts(c.QueryParam("user_id"), c.QueryParam("agent_id"))...)
	if err != nil {
		return s.mapError(err)
	}
	if results == nil {
		results = []memory.SearchResult{}
	}
	return c.JSON(http.StatusOK, SearchResponse{Results: results})
}

func scopeOpts(userID, agentID string) []memory.ScopeOption {
	var opts []memory.ScopeOption
	if userID != "" {
		opts = append(opts, memory.WithUserID(userID))
	}
	if agentID != "" {
		opts = append(opts, memory.WithAgentID(agentID))
	}
	return opts
}

// mapError translates engine errors to HTTP status codes. Provider
// failures surface as 502 so callers can tell upstream trouble from
// engine trouble.
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, memory.ErrInvalidK),
		errors.Is(err, memory.ErrNoMessages),
		errors.Is(err, memory.ErrEmptyQuery),
		errors.Is(err, config.ErrMissingScope):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, llm.ErrProvider):
		s.logger.Error("provider failure", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "completion provider failed")
	case errors.Is(err, vectorstore.ErrStore), errors.Is(err, vectorstore.ErrConnectionFailed):
		s.logger.Error("store failure", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "vector store failed")
	default:
		s.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// Start runs the server until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.cfg.Addr))
	return s.echo.Start(s.cfg.Addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
