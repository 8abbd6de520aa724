// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
	"github.com/jason-s-yu/lobbyfinder/internal/middleware"
)

// feedMessage is what clients may send on the lobby feed.
//
//	{"type": "subscribe", "gameId": 3}   only events for game 3
//	{"type": "subscribe", "gameId": 0}   every event again
//	{"type": "ping"}                     answered with {"type": "pong"}
type feedMessage struct {
	Type   string `json:"type"`
	GameID int64  `json:"gameId"`
}

// LobbyFeedWSHandler streams lobby events to browsers so they can re-render
// cards with the newest data. ?game= narrows the stream to one game.
func LobbyFeedWSHandler(ls *LobbyServer) http.HandlerFunc {
	logger := ls.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := queryID(r, "game")
		if err != nil {
			writeError(w, r, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}

		remoteAddr := r.RemoteAddr
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		var filter atomic.Int64
		filter.Store(gameID)

		sub := ls.Feed.Subscribe()
		defer ls.Feed.Unsubscribe(sub)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, cancel, c, sub, &filter, logger)

		err = readPump(ctx, c, sub, &filter, logger)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, err)
	}
}

// readPump handles client frames until the connection closes. It returns nil
// on a normal close.
func readPump(ctx context.Context, c *websocket.Conn, sub *lobby.Subscriber, filter *atomic.Int64, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("LobbyFeed: received non-text message type %d from subscriber %s. Ignoring.", typ, sub.ID)
			continue
		}

		var m feedMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.Close(InvalidMessageError, "invalid JSON")
			return err
		}
		switch m.Type {
		case "subscribe":
			if m.GameID < 0 {
				c.Close(InvalidMessageError, "invalid gameId")
				return nil
			}
			filter.Store(m.GameID)
		case "ping":
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, []byte(`{"type":"pong"}`))
			cancel()
			if err != nil {
				return err
			}
		default:
			logger.Debugf("LobbyFeed: ignoring message type %q from subscriber %s", m.Type, sub.ID)
		}
	}
}

// writePump forwards feed events to the client and keeps the connection alive
// with pings. It cancels the connection context when it stops.
func writePump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, sub *lobby.Subscriber, filter *atomic.Int64, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second) // Send pings periodically
	defer ticker.Stop()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.OutChan:
			if !ok {
				// Feed dropped us.
				c.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			if g := filter.Load(); g != 0 && (ev.Lobby == nil || ev.Lobby.Game.ID != g) && ev.Type != lobby.EventDeleted {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("LobbyFeed: failed to marshal event for subscriber %s: %v", sub.ID, err)
				continue
			}

			writeCtx, wcancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				logger.Warnf("LobbyFeed: failed to write to websocket for subscriber %s: %v", sub.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, pcancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			pcancel()
			if err != nil {
				logger.Warnf("LobbyFeed: failed to send ping to subscriber %s: %v. Assuming disconnect.", sub.ID, err)
				return
			}
		}
	}
}
