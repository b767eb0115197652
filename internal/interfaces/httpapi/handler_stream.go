package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/matchday/internal/platform/pubsub"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	streamWriteWait      = 10 * time.Second
	streamMaxClientFrame = 512

	frameTypeSnapshot     = "snapshot"
	frameTypeNotification = "notification"

	// closeSubscriberLagged tells the client to reconnect and re-read the
	// snapshot. 4000-4999 is the application range.
	closeSubscriberLagged = 4000
)

// The stream carries no credentials and only exposes public match state,
// so any origin may connect.
var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StreamMatch upgrades to a websocket and pushes a snapshot followed by
// change notifications. The subscription is registered before the snapshot
// is read so no commit can fall between the two.
func (h *Handler) StreamMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	sub, err := h.hub.Subscribe(matchID)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: realtime hub: %v", usecase.ErrDependencyUnavailable, err))
		return
	}
	defer h.hub.Unsubscribe(sub)

	snapshot, err := h.snapshotService.GetSnapshot(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "stream snapshot failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.WarnContext(ctx, "stream upgrade failed", "match_id", matchID, "error", err)
		return
	}
	defer conn.Close()

	snapshotFrame := snapshotToDTO(snapshot)
	if err := writeFrame(conn, streamFrame{Type: frameTypeSnapshot, Snapshot: &snapshotFrame}); err != nil {
		h.logger.WarnContext(ctx, "stream write snapshot failed", "match_id", matchID, "error", err)
		return
	}

	h.logger.InfoContext(ctx, "stream connected", "match_id", matchID, "remote_addr", r.RemoteAddr)
	closed := h.readStream(conn)

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-sub.C():
			if !ok {
				h.closeStream(conn, matchID, sub.Err())
				return
			}
			dto := notificationToDTO(n)
			if err := writeFrame(conn, streamFrame{Type: frameTypeNotification, Notification: &dto}); err != nil {
				h.logger.InfoContext(ctx, "stream write failed", "match_id", matchID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				h.logger.InfoContext(ctx, "stream ping failed", "match_id", matchID, "error", err)
				return
			}
		case <-closed:
			h.logger.InfoContext(ctx, "stream disconnected", "match_id", matchID)
			return
		}
	}
}

// readStream drains client frames so control frames are processed. The
// returned channel closes when the client goes away or misses a pong.
func (h *Handler) readStream(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	pongWait := 2 * h.pingInterval

	conn.SetReadLimit(streamMaxClientFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return closed
}

func (h *Handler) closeStream(conn *websocket.Conn, matchID string, reason error) {
	code := websocket.CloseNormalClosure
	text := "stream closed"
	if errors.Is(reason, pubsub.ErrSubscriberLagged) {
		code = closeSubscriberLagged
		text = "subscriber lagged, reconnect"
	} else if errors.Is(reason, pubsub.ErrHubClosed) {
		code = websocket.CloseGoingAway
		text = "server shutting down"
	}

	h.logger.Info("stream closed by server", "match_id", matchID, "reason", fmt.Sprint(reason))
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(streamWriteWait))
}

func writeFrame(conn *websocket.Conn, frame streamFrame) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(frame); err != nil {
		return fmt.Errorf("encode stream frame: %w", err)
	}
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, buf.B)
}
