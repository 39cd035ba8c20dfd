package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", "session", sess.ID, "err", err)
		return
	}
	s.serveConn(sess, conn)
}

// serveConn streams session messages to conn and dispatches the events it
// reads. The writer goroutine owns all writes to conn.
func (s *Server) serveConn(sess *Session, conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, unsubscribe, err := sess.Subscribe(ctx)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, perrors.UserMessage(err)),
			time.Now().Add(writeWait))
		return
	}
	defer unsubscribe()

	logger := s.logger.With("session", sess.ID, "remote", conn.RemoteAddr().String())
	logger.Debug("websocket connected")

	replies := make(chan Message, 8)
	go writeLoop(ctx, conn, msgs, replies)

	conn.SetReadLimit(maxEventBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", "err", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		ev, err := ParseEvent(data)
		if err == nil {
			_, err = sess.Dispatch(ctx, ev)
		}
		if err == nil {
			continue
		}
		logger.Debug("event rejected", "err", err)
		select {
		case replies <- errorMessage(err):
		default:
		}
		if perrors.Is(err, perrors.ErrCodeClosed) {
			return
		}
	}
}

// writeLoop sends messages until the subscription ends or ctx is done.
// Closing conn on exit unblocks the reader.
func writeLoop(ctx context.Context, conn *websocket.Conn, msgs <-chan Message, replies <-chan Message) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer conn.Close()

	for {
		select {
		case m, ok := <-msgs:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeMessage(conn, m); err != nil {
				return
			}
		case m := <-replies:
			if err := writeMessage(conn, m); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, m Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}
