package ws

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
	"github.com/DoyleJ11/poker-night-backend/internal/hub"
	"github.com/DoyleJ11/poker-night-backend/internal/types"
	wire "github.com/DoyleJ11/poker-night-backend/pkg/types"
)

type frame struct {
	Type     string          `json:"type"`
	Version  int             `json:"version"`
	PlayerID string          `json:"player_id"`
	Payload  json.RawMessage `json:"payload"`
	Error    string          `json:"error"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Options{Blinds: engine.Blinds{Small: 10, Big: 20}})
	srv := httptest.NewServer(Handler(h, nil, Options{DefaultStack: 1000}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=" + code
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, kind string) frame {
	t.Helper()
	for i := 0; i < 20; i++ {
		f := readFrame(t, conn)
		if f.Type == kind {
			return f
		}
	}
	t.Fatalf("no %s frame", kind)
	return frame{}
}

func joinAs(t *testing.T, srv *httptest.Server, code, name string) (*websocket.Conn, string) {
	t.Helper()
	conn := dial(t, srv, code)
	sendJSON(t, conn, types.ClientMessage{Type: wire.KindJoin, DisplayName: name})
	welcome := readFrame(t, conn)
	require.Equal(t, wire.KindWelcome, welcome.Type)
	require.NotEmpty(t, welcome.PlayerID)
	return conn, welcome.PlayerID
}

func TestJoinWelcomesThenBroadcastsSeats(t *testing.T) {
	srv := newServer(t)
	conn, id := joinAs(t, srv, "ROOM01", "alice")

	f := readFrame(t, conn)
	require.Equal(t, wire.KindSeatListChanged, f.Type)
	assert.Equal(t, 1, f.Version)

	var seats types.SeatListChanged
	require.NoError(t, json.Unmarshal(f.Payload, &seats))
	require.Len(t, seats.Seats, 1)
	assert.Equal(t, id, seats.Seats[0].PlayerID)
	assert.Equal(t, "alice", seats.Seats[0].Name)
	assert.Equal(t, id, seats.HostID)
	assert.Equal(t, int64(1000), seats.Stacks[id])
}

func TestFirstFrameMustBeJoin(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "ROOM02")
	sendJSON(t, conn, types.ClientMessage{Type: wire.KindCall})

	f := readFrame(t, conn)
	assert.Equal(t, wire.KindError, f.Type)
	assert.Equal(t, "join required", f.Error)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestRejectedJoinReportsReason(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "ROOM03")
	sendJSON(t, conn, types.ClientMessage{Type: wire.KindJoin, DisplayName: "   "})

	f := readFrame(t, conn)
	assert.Equal(t, wire.KindError, f.Type)
	assert.Equal(t, "InvalidName", f.Error)
}

func TestOversizedStackRejected(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "ROOM07")
	sendJSON(t, conn, types.ClientMessage{Type: wire.KindJoin, DisplayName: "whale", StartingStack: math.MaxInt64})

	f := readFrame(t, conn)
	assert.Equal(t, wire.KindError, f.Type)
	assert.Equal(t, "InvalidStack", f.Error)
}

func TestBadFramesAfterJoin(t *testing.T) {
	srv := newServer(t)
	conn, _ := joinAs(t, srv, "ROOM04", "alice")
	readUntil(t, conn, wire.KindSeatListChanged)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	f := readFrame(t, conn)
	assert.Equal(t, "bad json", f.Error)

	sendJSON(t, conn, types.ClientMessage{Type: "dealMeAces"})
	f = readFrame(t, conn)
	assert.Equal(t, "unknown type", f.Error)
}

func TestHandStartShowsOnlyOwnCards(t *testing.T) {
	srv := newServer(t)
	alice, aliceID := joinAs(t, srv, "ROOM05", "alice")
	bob, bobID := joinAs(t, srv, "ROOM05", "bob")
	readUntil(t, bob, wire.KindSeatListChanged)

	sendJSON(t, alice, types.ClientMessage{Type: wire.KindStartHand})

	for _, c := range []struct {
		conn *websocket.Conn
		id   string
	}{{alice, aliceID}, {bob, bobID}} {
		f := readUntil(t, c.conn, wire.KindHandStarted)
		var hs types.HandStarted
		require.NoError(t, json.Unmarshal(f.Payload, &hs))
		assert.Len(t, hs.HoleCards, 1)
		assert.Contains(t, hs.HoleCards, c.id)
		assert.Equal(t, "preflop", hs.Phase)
	}
}

func TestActionOutOfTurnRejected(t *testing.T) {
	srv := newServer(t)
	alice, aliceID := joinAs(t, srv, "ROOM06", "alice")
	bob, _ := joinAs(t, srv, "ROOM06", "bob")

	sendJSON(t, alice, types.ClientMessage{Type: wire.KindStartHand})
	readUntil(t, alice, wire.KindHandStarted)
	readUntil(t, bob, wire.KindHandStarted)

	// The button moves to bob for the first hand. Heads-up the button posts
	// the small blind and acts first, so alice is out of turn.
	sendJSON(t, alice, types.ClientMessage{Type: wire.KindCheck})
	f := readUntil(t, alice, wire.KindActionRejected)
	var rej types.ActionRejected
	require.NoError(t, json.Unmarshal(f.Payload, &rej))
	assert.Equal(t, aliceID, rej.PlayerID)
	assert.Equal(t, "NotYourTurn", rej.Reason)
}

func TestMissingCode(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToEngineCommand(t *testing.T) {
	cases := []struct {
		in   types.ClientMessage
		want engine.Command
		ok   bool
	}{
		{types.ClientMessage{Type: wire.KindRaise, Amount: 60}, engine.Command{Type: engine.CmdRaise, Amount: 60}, true},
		{types.ClientMessage{Type: wire.KindSetBlinds, SmallBlind: 25, BigBlind: 50}, engine.Command{Type: engine.CmdSetBlinds, SmallBlind: 25, BigBlind: 50}, true},
		{types.ClientMessage{Type: wire.KindAllIn}, engine.Command{Type: engine.CmdAllIn}, true},
		{types.ClientMessage{Type: wire.KindFold}, engine.Command{Type: engine.CmdFold}, true},
		// join is only valid as the first frame
		{types.ClientMessage{Type: wire.KindJoin}, engine.Command{}, false},
		{types.ClientMessage{Type: "Timeout"}, engine.Command{}, false},
	}
	for _, c := range cases {
		got, ok := toEngineCommand(c.in)
		assert.Equal(t, c.ok, ok, c.in.Type)
		assert.Equal(t, c.want, got, c.in.Type)
	}
}
