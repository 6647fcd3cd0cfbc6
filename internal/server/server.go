// Package server exposes a graph controller over HTTP and a websocket.
//
// A browser force-graph renderer loads the current graph from GET /api/graph,
// sends user events (filters, search, layout, cluster clicks) to the /api
// routes, and listens on /ws for graph updates and simulation reheats. The
// renderer's force simulation stands in for the controller's [layout.Simulation]
// through [RemoteSimulation].
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/codegraph/pkg/buildinfo"
	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/controller"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

const (
	apiTimeout      = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodySize     = 8 << 20
)

// Options configures a [Server].
type Options struct {
	// Addr is the listen address, e.g. "localhost:8080".
	Addr string

	// AllowedOrigins lists CORS and websocket origins. Empty or "*" allows
	// any origin.
	AllowedOrigins []string

	// Source supplies graph payloads to the controller. Required.
	Source pipeline.Source

	// Strategy is the initial layout strategy.
	Strategy layout.Strategy

	// InferLanguage fills missing languages from file extensions.
	InferLanguage bool

	Logger *log.Logger
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// Server serves one shared controller to any number of renderers.
type Server struct {
	opts        Options
	logger      *log.Logger
	hub         *Hub
	sim         *RemoteSimulation
	ctrl        *controller.Controller
	router      chi.Router
	unsubscribe func()
}

// New builds the server and its controller. Nothing listens until
// [Server.ListenAndServe].
func New(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("server: source is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{opts: opts, logger: opts.Logger}
	s.hub = NewHub(s.logger, opts.AllowedOrigins)
	s.sim = NewRemoteSimulation(s.hub)
	s.ctrl = controller.New(controller.Options{
		Source:        opts.Source,
		Engine:        layout.New(s.sim, layout.Options{}),
		Strategy:      opts.Strategy,
		InferLanguage: opts.InferLanguage,
		Logger:        s.logger,
	})

	s.hub.OnConnect = func(c *Client) { c.Send(MsgGraph, s.snapshot()) }
	s.hub.OnMessage = s.handleMessage
	s.unsubscribe = s.ctrl.Subscribe(func(controller.Event) {
		s.hub.Broadcast(MsgGraph, s.snapshot())
	})

	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
	})

	r.Route("/api/graph", func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))
		r.Get("/", s.handleGetGraph)
		r.Post("/filters", s.handleSetFilters)
		r.Post("/retry", s.handleRetry)
		r.Put("/search", s.handleSearch)
		r.Put("/layout", s.handleLayout)
		r.Post("/nodes/{id}/click", s.handleClick)
		r.Post("/positions", s.handlePositions)
	})

	// The websocket route stays outside the timeout middleware; the
	// connection outlives the request.
	r.Get("/ws", s.hub.ServeWS)

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Controller returns the shared controller.
func (s *Server) Controller() *controller.Controller { return s.ctrl }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Simulation returns the renderer-backed simulation.
func (s *Server) Simulation() *RemoteSimulation { return s.sim }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * apiTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("codegraph server listening", "addr", ln.Addr().String())
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects websocket clients and detaches from the controller.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

// requestLogger logs one line per request at debug level, errors at warn.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				logger.Warn("request failed", kv...)
				return
			}
			logger.Debug("request", kv...)
		})
	}
}
