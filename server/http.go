package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"pythons/game"
	"pythons/game/manager"
	"pythons/game/types"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Spectator serves the most recent frame and run statistics as JSON. It
// only reads what was published and never touches a game.
type Spectator struct {
	mu      sync.RWMutex
	snap    game.Snapshot
	stats   manager.Stats
	hasSnap bool

	engine *gin.Engine
	log    *log.Logger
}

func NewSpectator(l *log.Logger) *Spectator {
	gin.SetMode(gin.ReleaseMode)
	s := &Spectator{
		engine: gin.New(),
		log:    l,
	}
	s.engine.Use(gin.LoggerWithWriter(l.Writer()), gin.Recovery())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/state", s.getState)
	s.engine.GET("/stats", s.getStats)
	return s
}

// Publish implements Publisher. The body is copied so the caller may reuse
// its snapshot.
func (s *Spectator) Publish(snap game.Snapshot) {
	snap.Body = append([]types.Point(nil), snap.Body...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.hasSnap = true
}

// PublishStats implements Publisher.
func (s *Spectator) PublishStats(stats manager.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

func (s *Spectator) getState(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSnap {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no game published yet"})
		return
	}
	c.JSON(http.StatusOK, s.snap)
}

func (s *Spectator) getStats(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, s.stats)
}

func (s *Spectator) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx ends.
func (s *Spectator) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "http listen")
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx ends, then shuts down gracefully.
func (s *Spectator) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{Handler: s.engine}
	s.log.Printf("spectator listening on %s", listener.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(listener)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "http serve")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "http shutdown")
		}
		return nil
	}
}
