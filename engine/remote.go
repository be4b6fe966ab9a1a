package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"nogo/experiments/metrics"
	"nogo/game"
	"nogo/searcher/agent"
)

// Remote is an agent served by another process through the agent HTTP server.
type Remote struct {
	name   string
	url    string
	side   game.Side
	client *http.Client
}

func NewRemote(name, url string) *Remote {
	return &Remote{
		name:   name,
		url:    url,
		side:   game.Black,
		client: &http.Client{Timeout: time.Minute},
	}
}

var _ agent.Agent = (*Remote)(nil)

func (r *Remote) Name() string {
	return r.name
}

// Reset asks the server to start a new game. Failures are logged; the server then
// detects the new game itself from the unreachable position.
func (r *Remote) Reset(side game.Side) {
	r.side = side
	if _, err := r.post("/reset", map[string]string{"side": side.String()}); err != nil {
		log.Error().Err(err).Str("agent", r.name).Msg("failed to reset remote agent")
	}
}

// FindMove returns nil when the request fails, leaving the engine to pick a fallback.
func (r *Remote) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	body, err := r.post("/move", map[string]string{"board": state.String()})
	if err != nil {
		log.Error().Err(err).Str("agent", r.name).Msg("failed to request move")
		return nil, metrics.SearchMetric{}
	}

	var resp struct {
		Move       string `json:"move"`
		Iterations int    `json:"iterations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Error().Err(err).Str("agent", r.name).Msg("failed to decode move")
		return nil, metrics.SearchMetric{}
	}
	metric := metrics.SearchMetric{Iterations: resp.Iterations}
	if resp.Move == agent.Pass {
		return nil, metric
	}
	point, err := strconv.Atoi(resp.Move)
	if err != nil {
		log.Error().Err(err).Str("agent", r.name).Msg("failed to decode move")
		return nil, metric
	}
	return game.Place{Point: point, Who: r.side}, metric
}

func (r *Remote) post(path string, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Post(r.url+path, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, out)
	}
	return out, nil
}
