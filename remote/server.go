package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"gambit/searcher"
)

// Server exposes one engine instance over HTTP. The engine owns mutable
// caches, so decision requests are served one at a time.
type Server struct {
	engine searcher.Engine
	codec  Codec
	hub    *watchHub

	mu sync.Mutex // guards engine
}

func NewServer(engine searcher.Engine, codec Codec) *Server {
	return &Server{
		engine: engine,
		codec:  codec,
		hub:    newWatchHub(),
	}
}

// Handler builds the route table:
//
//	POST /v1/choose       decide the best move for a position
//	GET  /v1/stats        cumulative work counters
//	POST /v1/cache/clear  drop state reused between decisions
//	GET  /v1/watch        websocket stream of completed decisions
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/v1/choose", s.handleChoose)
	r.Get("/v1/stats", s.handleStats)
	r.Post("/v1/cache/clear", s.handleClearCache)
	r.Get("/v1/watch", s.handleWatch)
	return r
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	log.Info().Str("addr", addr).Msg("engine server listening")
	select {
	case <-ctx.Done():
	case err, ok := <-errc:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return server.Close()
	}
	return nil
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var payload chooseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	state, err := s.codec.DecodeState(payload.State)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tc, err := payload.control()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no legal moves"})
		return
	}

	s.mu.Lock()
	before := s.engine.Stats()
	move, err := s.engine.ChooseBest(moves, state, tc)
	delta := s.engine.Stats().Sub(before)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, chooseResponse{
		Move:  move.String(),
		Stats: statsToDTO(delta),
	})
	if s.hub.hasClients() {
		s.hub.publish(watchFrame{
			State: payload.State,
			Seat:  state.Player().String(),
			Move:  move.String(),
			Score: state.Score(),
			Stats: statsToDTO(delta),
		})
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.engine.Stats()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, statsToDTO(stats))
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.engine.ClearCache()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
