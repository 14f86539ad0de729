//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package dashboard serves read-only warehouse views over HTTP.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chessdash/chessdash/internal/logging"
)

const (
	defaultRecentLimit  = 25
	defaultOpeningLimit = 20
	maxLimit            = 500
)

// Server wraps the HTTP server over a read-only warehouse connection.
type Server struct {
	conn       *sql.DB
	port       int
	players    []string
	httpServer *http.Server
}

// New creates a dashboard server. players are the configured usernames
// whose win rates appear on the overview. The connection should be
// opened read-only so a concurrent ingest run keeps the writer lock.
func New(conn *sql.DB, port int, players []string) *Server {
	return &Server{conn: conn, port: port, players: players}
}

// router builds the route table.
func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleIndex)
	api := router.Group("/api")
	{
		api.GET("/overview", s.handleOverview)
		api.GET("/monthly", s.handleMonthly)
		api.GET("/time-controls", s.handleTimeControls)
		api.GET("/openings", s.handleOpenings)
		api.GET("/recent", s.handleRecent)
	}
	return router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log := logging.Component("dashboard")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", s.port).Msg("Dashboard listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>chessdash</title></head>
<body>
<h1>chessdash</h1>
<p>Warehouse statistics API. Endpoints:</p>
<ul>
<li><a href="/api/overview">/api/overview</a></li>
<li><a href="/api/monthly">/api/monthly</a></li>
<li><a href="/api/time-controls">/api/time-controls</a></li>
<li><a href="/api/openings">/api/openings</a></li>
<li><a href="/api/recent">/api/recent</a></li>
</ul>
<p>All endpoints accept an optional <code>?platform=</code> filter.</p>
</body>
</html>`

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func (s *Server) handleOverview(c *gin.Context) {
	overview, err := queryOverview(c.Request.Context(), s.conn, c.Query("platform"), s.players)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) handleMonthly(c *gin.Context) {
	rows, err := queryMonthly(c.Request.Context(), s.conn,
		c.Query("platform"), c.Query("player"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": rows})
}

func (s *Server) handleTimeControls(c *gin.Context) {
	rows, err := queryTimeControls(c.Request.Context(), s.conn, c.Query("platform"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_controls": rows})
}

func (s *Server) handleOpenings(c *gin.Context) {
	rows, err := queryOpenings(c.Request.Context(), s.conn,
		c.Query("platform"), limitParam(c, defaultOpeningLimit))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"openings": rows})
}

func (s *Server) handleRecent(c *gin.Context) {
	rows, err := queryRecent(c.Request.Context(), s.conn,
		c.Query("platform"), limitParam(c, defaultRecentLimit))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": rows})
}

func (s *Server) fail(c *gin.Context, err error) {
	log := logging.Component("dashboard")
	log.Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Msg("Query failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// limitParam parses ?limit=, clamping to a sane range.
func limitParam(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
