package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
	"github.com/DoyleJ11/poker-night-backend/internal/hub"
	"github.com/DoyleJ11/poker-night-backend/internal/lobby"
	"github.com/DoyleJ11/poker-night-backend/internal/ws"
	wire "github.com/DoyleJ11/poker-night-backend/pkg/types"
)

func newTestServer(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Options{Blinds: engine.Blinds{Small: 10, Big: 20}})
	srv := httptest.NewServer(SetupRoutes(h, nil, ws.Options{DefaultStack: 1000}))
	t.Cleanup(srv.Close)
	return h, srv
}

func TestGenerateCode(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Regexp(t, re, code)
	}
}

func TestCreateLobby(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/lobbies", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Code, 6)
}

func TestGetLobbyUnknown(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/lobbies/NOPE00")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UnknownRoom", body.Error)
}

func TestGetLobbyView(t *testing.T) {
	h, srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	lb, err := h.Ensure(ctx, "ROOM01")
	require.NoError(t, err)
	out := make(chan lobby.Outbound, 16)
	require.NoError(t, lb.Join(ctx, lobby.Join{PlayerID: "p1", DisplayName: "alice", StartingStack: 750, Outbox: out}))

	resp, err := http.Get(srv.URL + "/lobbies/ROOM01")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view wire.TableView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "ROOM01", view.Code)
	assert.Equal(t, 1, view.Version)
	assert.Equal(t, 1, view.Clients)
	assert.Equal(t, "p1", view.HostID)
	assert.Equal(t, int64(10), view.SmallBlind)
	assert.Equal(t, int64(20), view.BigBlind)
	require.Len(t, view.Seats, 1)
	assert.Equal(t, "alice", view.Seats[0].Name)
	assert.Equal(t, int64(750), view.Seats[0].Stack)
	assert.Empty(t, view.Community)
}

func TestHealthz(t *testing.T) {
	h, srv := newTestServer(t)
	_, err := h.Ensure(context.Background(), "ROOM02")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Rooms)
}
