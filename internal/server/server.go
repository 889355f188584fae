// Package server exposes the task and quest collections over HTTP: a REST
// API per collection, a websocket change feed, health and metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/generate"
	"github.com/idilsaglam/questlog/internal/logger"
	"github.com/idilsaglam/questlog/internal/model"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Tasks  *collection.Store[model.TaskCategory]
	Quests *collection.Store[model.QuestCategory]

	// nil generators answer 503 on /generate
	TaskGen  generate.Generator
	QuestGen generate.Generator

	// AllowedOrigin restricts CORS and websocket origins. Empty allows any.
	AllowedOrigin string
	Log           *slog.Logger
}

type Server struct {
	router *gin.Engine
	hub    *hub
	log    *slog.Logger
	cancel []func()
}

func New(opt Options) *Server {
	log := opt.Log
	if log == nil {
		log = logger.Get()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestMetrics(log), cors(opt.AllowedOrigin))

	s := &Server{router: r, hub: newHub(log, opt.AllowedOrigin), log: log}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", s.hub.serve)

	if opt.Tasks != nil {
		s.cancel = append(s.cancel, mount(r.Group("/api/tasks"), s.hub, &collectionHandler[model.TaskCategory]{
			kind:     model.KindTask,
			store:    opt.Tasks,
			fallback: model.TaskGeneral,
			gen:      opt.TaskGen,
			log:      log.With("collection", opt.Tasks.Key()),
		}))
	}
	if opt.Quests != nil {
		s.cancel = append(s.cancel, mount(r.Group("/api/quests"), s.hub, &collectionHandler[model.QuestCategory]{
			kind:     model.KindQuest,
			store:    opt.Quests,
			fallback: model.QuestDefault,
			gen:      opt.QuestGen,
			log:      log.With("collection", opt.Quests.Key()),
		}))
	}
	return s
}

// Handler is the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.Close()

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}

// Close drops store subscriptions and disconnects websocket clients.
func (s *Server) Close() {
	for _, c := range s.cancel {
		c()
	}
	s.cancel = nil
	s.hub.close()
}
