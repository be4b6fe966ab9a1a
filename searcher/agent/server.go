package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"nogo/game"
)

const Pass = "pass"

// MaxRequestBytes bounds a request body; a 19x19 board is well below it.
const MaxRequestBytes = 64 << 10

type moveRequest struct {
	Board string `json:"board"`
}

type moveResponse struct {
	Move       string `json:"move"` // Point index, or "pass" without a legal move
	Side       string `json:"side"`
	Iterations int    `json:"iterations"`
}

type resetRequest struct {
	Side string `json:"side"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes one agent over HTTP. Requests are served one at a time since the
// agent keeps its search tree between moves.
type Server struct {
	mu    sync.Mutex
	agent Agent
	side  game.Side
}

func NewServer(agent Agent, side game.Side) *Server {
	return &Server{agent: agent, side: side}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/move", s.handleMove)
	r.Post("/reset", s.handleReset)
	return r
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload moveRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload: " + err.Error()})
		return
	}
	board, err := game.ParseBoard(payload.Board)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	move, metric := s.agent.FindMove(board)
	resp := moveResponse{Move: Pass, Side: s.side.String(), Iterations: metric.Iterations}
	if place, ok := move.(game.Place); ok {
		resp.Move = strconv.Itoa(place.Point)
	}
	log.Info().
		Str("agent", s.agent.Name()).
		Str("request", middleware.GetReqID(r.Context())).
		Str("move", resp.Move).
		Msg("move served")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload resetRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload: " + err.Error()})
		return
	}
	side, err := game.ParseSide(payload.Side)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.agent.Reset(side)
	s.side = side
	log.Info().Str("agent", s.agent.Name()).Stringer("side", side).Msg("agent reset")
	writeJSON(w, http.StatusOK, map[string]string{"side": side.String()})
}

// ListenAndServe serves the agent on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("agent server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
