package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/engine"
	"github.com/Sammers21/owl-esports/internal/hub"
	"github.com/Sammers21/owl-esports/internal/room"
	"github.com/Sammers21/owl-esports/internal/types"
	pubtypes "github.com/Sammers21/owl-esports/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 30 * time.Second
	replyTimeout = 2 * time.Second
)

type Options struct {
	// OriginPatterns are passed to websocket.Accept; empty means same-origin only.
	OriginPatterns []string
	Logger         *zap.Logger
}

// Handler subscribes the connection to the room of ?tg=, creating it when
// no pick line has been seen yet, and forwards client commands to it.
func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		trackerID, err := types.ParseTrackerID(r.URL.Query().Get(pubtypes.ParamID))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rm, err := h.Ensure(r.Context(), trackerID)
		if err != nil {
			http.Error(w, "tracker unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan room.Snapshot, 8)
		clientID := uuid.NewString()
		log := logger.With(zap.String("tracker", rm.ID()), zap.String("client", clientID))

		select {
		case rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}:
		case <-rm.Done():
			return
		}
		log.Debug("subscriber joined")
		defer func() {
			select {
			case rm.Inbox() <- room.Leave{ClientID: clientID}:
			case <-rm.Done():
			}
			log.Debug("subscriber left")
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case snap, ok := <-out:
					if !ok {
						// Room dropped us or shut down.
						_ = conn.Close(websocket.StatusGoingAway, "tracker closed")
						return
					}
					writeJSON(writeCtx, conn, types.ServerMessage{
						Type:    "StateSnapshot",
						Tracker: trackerID,
						Version: snap.Version,
						State:   &snap.State,
					})
				}
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "unknown type"})
				continue
			}

			reply := make(chan room.Outcome, 1)
			select {
			case rm.Inbox() <- room.FromClient{Cmd: cmd, Reply: reply}:
			case <-rm.Done():
				return
			}
			select {
			case o := <-reply:
				// Accepted commands come back as a snapshot through the writer.
				if o.Err != nil {
					writeJSON(r.Context(), conn, types.ServerMessage{Type: "Error", Version: o.Version, Error: o.Err.Error()})
				}
			case <-time.After(replyTimeout):
				log.Warn("no outcome from room", zap.String("command", cm.Type))
			}
		}
	}
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch engine.CommandType(m.Type) {
	case engine.CmdSubmitPickLine:
		return engine.Command{Type: engine.CmdSubmitPickLine, Line: m.Line, Match: m.Match}, true
	case engine.CmdClearDraft:
		return engine.Command{Type: engine.CmdClearDraft}, true
	default:
		return engine.Command{}, false
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
