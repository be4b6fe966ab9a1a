package agent

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nogo/game"
)

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewRandomAgent("rand", game.Black, 2), game.Black).Routes())
	defer srv.Close()

	t.Run("ping", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/ping")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("move", func(t *testing.T) {
		board := "...\n.O.\n..."
		resp := post(t, srv, "/move", moveRequest{Board: board})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got moveResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, "black", got.Side)
		point, err := strconv.Atoi(got.Move)
		require.NoError(t, err, "Move should be a point index")

		state, err := game.ParseBoard(board)
		require.NoError(t, err)
		_, legality := state.Play(game.Place{Point: point, Who: game.Black})
		require.Equal(t, game.Legal, legality)
	})

	t.Run("pass without a legal move", func(t *testing.T) {
		resp := post(t, srv, "/move", moveRequest{Board: "O"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got moveResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, Pass, got.Move)
	})

	t.Run("invalid board", func(t *testing.T) {
		resp := post(t, srv, "/move", moveRequest{Board: "..\n."})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid payload", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/move", "application/json", bytes.NewReader([]byte("{")))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("oversized body", func(t *testing.T) {
		resp := post(t, srv, "/move", moveRequest{Board: strings.Repeat(".", MaxRequestBytes)})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = post(t, srv, "/reset", resetRequest{Side: strings.Repeat("w", MaxRequestBytes)})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("reset", func(t *testing.T) {
		resp := post(t, srv, "/reset", resetRequest{Side: "white"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = post(t, srv, "/move", moveRequest{Board: "X..\n...\n..."})
		var got moveResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, "white", got.Side)
		require.NotEqual(t, Pass, got.Move)
	})

	t.Run("reset with an unknown side", func(t *testing.T) {
		resp := post(t, srv, "/reset", resetRequest{Side: "red"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
