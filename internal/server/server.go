// Package server serves the card page over HTTP and pushes every state
// change to connected browsers over a websocket.
//
// The document and card live on a dispatch.Loop; handlers reach them only
// through Loop.Call.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/go-drift/stateview/internal/profilecard"
	"github.com/go-drift/stateview/internal/randomuser"
	"github.com/go-drift/stateview/pkg/core"
	"github.com/go-drift/stateview/pkg/dispatch"
	"github.com/go-drift/stateview/pkg/dom"
)

// liveScript replaces <main> with every frame pushed on /ws.
const liveScript = `<script>(function(){` +
	`var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"/ws");` +
	`ws.onmessage=function(e){var m=document.querySelector("main");if(m){m.outerHTML=e.data;}};` +
	`})();</script>`

// Config configures a Server.
type Config struct {
	// Fetcher loads profiles. Required.
	Fetcher profilecard.Fetcher
	// Avatars, when set, embeds pictures as data URIs.
	Avatars profilecard.PictureResolver
	// Gender is used for the priming fetch and when a request names none.
	Gender randomuser.Gender
	// Microinteraction is the stroke delay; zero means the card default.
	Microinteraction time.Duration
	// RequestTimeout bounds every non-websocket request. Zero means 30s.
	RequestTimeout time.Duration
	// LogRequests enables chi's request logger.
	LogRequests bool
}

// Server owns one card page.
type Server struct {
	cfg     Config
	loop    *dispatch.Loop
	doc     dom.Node
	main    dom.Node
	card    *profilecard.Card
	metrics *Metrics
	hub     *hub
	router  chi.Router

	upgrader websocket.Upgrader
	ctx      context.Context
}

// New parses the page and builds the card. Nothing runs until Start.
func New(cfg Config) (*Server, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("server: Config.Fetcher is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	doc, err := profilecard.NewDocument()
	if err != nil {
		return nil, err
	}
	handles, err := profilecard.BindHandles(doc)
	if err != nil {
		return nil, err
	}
	bodies := doc.ElementsByTagName("body")
	if len(bodies) == 0 {
		return nil, errors.New("server: page has no <body>")
	}
	if _, err := bodies[0].AppendMarkup(liveScript); err != nil {
		return nil, fmt.Errorf("server: inject live script: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		loop:    dispatch.NewLoop(64),
		doc:     doc,
		main:    handles.Main.(dom.Node),
		metrics: NewMetrics(),
		hub:     newHub(),
		ctx:     context.Background(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	opts := []profilecard.Option{profilecard.WithRegistry(core.NewRegistry())}
	if cfg.Microinteraction > 0 {
		opts = append(opts, profilecard.WithMicrointeraction(cfg.Microinteraction))
	}
	if cfg.Avatars != nil {
		opts = append(opts, profilecard.WithAvatars(cfg.Avatars))
	}
	s.card = profilecard.NewCard(handles, s.metrics.Instrument(cfg.Fetcher), opts...)
	s.card.OnChange(func(state profilecard.ViewState) {
		s.metrics.ObserveState(state)
		s.hub.broadcast(s.main.OuterHTML())
	})
	s.hub.broadcast(s.main.OuterHTML())

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start registers the server's loop as the UI dispatcher, runs it until ctx
// is done and starts the priming fetch. It returns immediately. The
// dispatcher stays registered after the loop stops; posts to a stopped loop
// are dropped.
func (s *Server) Start(ctx context.Context) {
	s.ctx = ctx
	dispatch.RegisterDispatch(s.loop.Dispatch)
	go func() {
		s.loop.Run(ctx)
		s.hub.closeAll()
	}()
	s.loop.Post(func() { s.card.Generate(ctx, s.cfg.Gender) })
}

// Close stops the loop and disconnects websocket clients.
func (s *Server) Close() {
	s.loop.Close()
	s.hub.closeAll()
}

// ListenAndServe starts the server and serves HTTP on addr until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.Start(ctx)
	defer s.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.cfg.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Hijacked connections outlive any request timeout.
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		r.Get("/", s.handlePage)
		r.Get("/state", s.handleState)
		r.Post("/generate", s.handleGenerate)
	})
	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var page string
	if err := s.loop.Call(r.Context(), func() { page = s.doc.OuterHTML() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!DOCTYPE html>\n" + page))
}

type stateResponse struct {
	State string `json:"state"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var resp stateResponse
	err := s.loop.Call(r.Context(), func() {
		state := s.card.State()
		resp.State = profilecard.Name(state)
		switch state := state.(type) {
		case profilecard.Loaded:
			if el, ok := s.doc.ElementByID(profilecard.IDName); ok {
				resp.Name = el.Text()
			}
		case profilecard.Failed:
			if state.Err != nil {
				resp.Error = state.Err.Error()
			}
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	gender := s.cfg.Gender
	if raw := r.FormValue("gender"); raw != "" {
		g, err := randomuser.ParseGender(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gender = g
	}

	// The fetch outlives the request.
	fetchCtx := s.ctx
	if err := s.loop.Call(r.Context(), func() { s.card.Generate(fetchCtx, gender) }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}
	c := s.hub.join(conn)
	go c.writePump()
	c.readPump()
	s.hub.leave(c)
}
