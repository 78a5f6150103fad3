package spectate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakepilot/internal/boardimg"
	"github.com/vovakirdan/snakepilot/internal/storage"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// RunSource lists stored runs. *storage.Store satisfies it.
type RunSource interface {
	TopRuns(provider string, limit int) ([]storage.Run, error)
}

// Server exposes the hub over HTTP.
type Server struct {
	hub      *Hub
	runs     RunSource
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a server. runs may be nil when no database is open.
func NewServer(hub *Hub, runs RunSource, logger *log.Logger) *Server {
	return &Server{
		hub:    hub,
		runs:   runs,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the gin router with every route registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)

	router.GET("/healthz", s.handleHealth)
	router.GET("/api/state", s.handleState)
	router.GET("/api/scores", s.handleScores)
	router.GET("/board.png", s.handleBoard)
	router.GET("/ws", s.handleWS)
	return router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("spectator API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectate: listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("spectate: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"subscribers": s.hub.Subscribers(),
		"dropped":     s.hub.Dropped(),
		"failed":      s.hub.Failed(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	data, ok := s.hub.latestEncoded()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no game running yet"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleScores(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "score storage unavailable"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	runs, err := s.runs.TopRuns(c.Query("provider"), limit)
	if err != nil {
		s.logger.Error("query runs failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query runs"})
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleBoard(c *gin.Context) {
	frame, ok := s.hub.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no game running yet"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "0"))
	if err != nil || size < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a non-negative integer"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := boardimg.EncodePNG(c.Writer, frame.Snapshot, size); err != nil {
		s.logger.Error("render board failed", "error", err)
	}
}

// handleWS streams every published frame to the client until it disconnects.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	frames, cancel := s.hub.Subscribe()
	defer cancel()

	// Drain client messages so pongs and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if data, ok := s.hub.latestEncoded(); ok {
		if err := s.write(conn, websocket.TextMessage, data); err != nil {
			return
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case data, ok := <-frames:
			if !ok {
				return
			}
			if err := s.write(conn, websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := s.write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, messageType int, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}
