package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-night-backend/internal/engine"
	"github.com/DoyleJ11/poker-night-backend/internal/hub"
	"github.com/DoyleJ11/poker-night-backend/internal/lobby"
	"github.com/DoyleJ11/poker-night-backend/internal/types"
	wire "github.com/DoyleJ11/poker-night-backend/pkg/types"
)

const (
	outboxSize   = 64
	writeTimeout = 3 * time.Second
	joinAttempts = 3
)

type Options struct {
	DefaultStack   int64
	OriginPatterns []string
	PingInterval   time.Duration // 0 disables pings
}

// Handler upgrades GET /ws?code=ROOM. The first frame must be a join; the
// room is created on first use.
func Handler(h *hub.Hub, log *zap.Logger, opts Options) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		s := &session{
			conn: conn,
			hub:  h,
			code: code,
			id:   uuid.NewString(),
			log:  log.With(zap.String("room", code)),
			opts: opts,
		}
		s.run(r.Context())
	}
}

type session struct {
	conn *websocket.Conn
	hub  *hub.Hub
	code string
	id   engine.PlayerID
	log  *zap.Logger
	opts Options
}

func (s *session) run(ctx context.Context) {
	out := make(chan lobby.Outbound, outboxSize)
	lb, ok := s.join(ctx, out)
	if !ok {
		return
	}
	defer func() {
		// The request context may already be gone here.
		_ = lb.Send(context.Background(), lobby.Leave{PlayerID: s.id})
	}()
	s.log.Info("client connected", zap.String("player", s.id))

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.writer(connCtx, cancel, out)
	if s.opts.PingInterval > 0 {
		go s.heartbeat(connCtx, cancel)
	}

	s.reader(connCtx, lb)
	s.log.Info("client disconnected", zap.String("player", s.id))
}

// join reads the first frame and seats the player. The welcome frame is
// written before any lobby event can reach the socket.
func (s *session) join(ctx context.Context, out chan lobby.Outbound) (*lobby.Lobby, bool) {
	cm, err := s.readMessage(ctx)
	if err != nil {
		return nil, false
	}
	if cm.Type != wire.KindJoin {
		s.writeError(ctx, "join required")
		s.conn.Close(websocket.StatusPolicyViolation, "join required")
		return nil, false
	}
	stack := cm.StartingStack
	if stack == 0 {
		stack = s.opts.DefaultStack
	}

	var lb *lobby.Lobby
	for attempt := 0; attempt < joinAttempts; attempt++ {
		lb, err = s.hub.Ensure(ctx, s.code)
		if err != nil {
			break
		}
		err = lb.Join(ctx, lobby.Join{
			PlayerID:      s.id,
			DisplayName:   cm.DisplayName,
			StartingStack: stack,
			Outbox:        out,
		})
		// The room may have emptied between Ensure and Join.
		if !errors.Is(err, lobby.ErrClosed) {
			break
		}
	}
	if err != nil {
		s.log.Debug("join failed", zap.Error(err))
		s.writeError(ctx, joinErrorCode(err))
		s.conn.Close(websocket.StatusPolicyViolation, "join failed")
		return nil, false
	}

	if err := s.write(ctx, types.ServerMessage{Type: wire.KindWelcome, PlayerID: s.id}); err != nil {
		_ = lb.Send(context.Background(), lobby.Leave{PlayerID: s.id})
		return nil, false
	}
	return lb, true
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, hub.ErrClosed), errors.Is(err, lobby.ErrClosed):
		return "RoomClosed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	}
	return engine.ReasonCode(err)
}

// writer owns outgoing lobby events. A closed outbox means the lobby dropped
// this client or shut down.
func (s *session) writer(ctx context.Context, cancel context.CancelFunc, out <-chan lobby.Outbound) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ob, ok := <-out:
			if !ok {
				s.conn.Close(websocket.StatusGoingAway, "table closed")
				return
			}
			if err := s.write(ctx, types.EventMessage(ob.Version, ob.Event)); err != nil {
				s.log.Debug("write failed", zap.String("player", s.id), zap.Error(err))
				return
			}
		}
	}
}

func (s *session) heartbeat(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, s.opts.PingInterval)
			err := s.conn.Ping(pctx)
			pcancel()
			if err != nil {
				s.log.Debug("ping failed", zap.String("player", s.id), zap.Error(err))
				cancel()
				s.conn.CloseNow()
				return
			}
		}
	}
}

func (s *session) reader(ctx context.Context, lb *lobby.Lobby) {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				s.log.Debug("read failed", zap.String("player", s.id), zap.Error(err))
			}
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			s.writeError(ctx, "bad json")
			continue
		}

		cmd, ok := toEngineCommand(cm)
		if !ok {
			s.writeError(ctx, "unknown type")
			continue
		}

		if err := lb.Send(ctx, lobby.FromClient{PlayerID: s.id, Cmd: cmd}); err != nil {
			return
		}
	}
}

func (s *session) readMessage(ctx context.Context) (types.ClientMessage, error) {
	var cm types.ClientMessage
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return cm, err
	}
	if err := json.Unmarshal(data, &cm); err != nil {
		s.writeError(ctx, "bad json")
		s.conn.Close(websocket.StatusPolicyViolation, "bad json")
		return cm, err
	}
	return cm, nil
}

// write is shared by the writer goroutine and the reader's error frames.
// Conn.Write is safe for concurrent use.
func (s *session) write(ctx context.Context, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(wctx, websocket.MessageText, payload)
}

func (s *session) writeError(ctx context.Context, reason string) {
	_ = s.write(ctx, types.ServerMessage{Type: wire.KindError, Error: reason})
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case wire.KindSetBlinds:
		return engine.Command{Type: engine.CmdSetBlinds, SmallBlind: m.SmallBlind, BigBlind: m.BigBlind}, true
	case wire.KindStartHand:
		return engine.Command{Type: engine.CmdStartHand}, true
	case wire.KindRaise:
		return engine.Command{Type: engine.CmdRaise, Amount: m.Amount}, true
	case wire.KindCall:
		return engine.Command{Type: engine.CmdCall}, true
	case wire.KindCheck:
		return engine.Command{Type: engine.CmdCheck}, true
	case wire.KindFold:
		return engine.Command{Type: engine.CmdFold}, true
	case wire.KindAllIn:
		return engine.Command{Type: engine.CmdAllIn}, true
	default:
		return engine.Command{}, false
	}
}
