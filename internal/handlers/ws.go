// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/drawdash/drawdash/internal/auth"
	"github.com/drawdash/drawdash/internal/game"
	"github.com/drawdash/drawdash/internal/middleware"
)

// WSHandler accepts the single game websocket. Every client event flows over
// this connection after the handshake; the first server event is the sid
// announcement carrying the connection id and the resolved user id.
func WSHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"drawdash"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "drawdash" {
			c.Close(BadSubprotocolError, "client must speak the drawdash subprotocol")
			return
		}

		userID := resolveUserID(r)

		ctx, cancel := context.WithCancel(r.Context())
		gc := &GameConnection{
			ID:      uuid.NewString(),
			UserID:  userID,
			OutChan: make(chan game.Event, 32),
			Cancel:  cancel,
		}
		s.register(gc)

		middleware.LogWebSocketConnect(s.Logger, remoteAddr, gc.ID)
		s.Logger.Debugf("Conn %s resolved user id %s.", gc.ID, userID)

		gc.Send(game.NewEvent(game.EventSid, game.P{
			"sid":    gc.ID,
			"userId": userID.String(),
		}))

		go writePump(ctx, c, gc, s.Logger)
		readPump(ctx, c, s, gc)

		// ---- Cleanup after readPump exits ----
		cancel()
		s.handleDisconnect(gc.ID)
		middleware.LogWebSocketDisconnect(s.Logger, remoteAddr, gc.ID, nil)
	}
}

// resolveUserID establishes the client's persistent identity: a verified
// token from the query string or cookie wins, anything else gets a fresh id.
func resolveUserID(r *http.Request) uuid.UUID {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	}
	if token != "" {
		if idStr, err := auth.VerifyIdentityToken(token); err == nil {
			if id, perr := uuid.Parse(idStr); perr == nil {
				return id
			}
		}
		logrus.Warnf("Invalid identity token from %s, issuing fresh id.", r.RemoteAddr)
	}
	return uuid.New()
}

// readPump handles incoming messages until the connection drops.
func readPump(ctx context.Context, c *websocket.Conn, s *Server, gc *GameConnection) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				s.Logger.Infof("Conn %s: websocket closed normally.", gc.ID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				s.Logger.Warnf("Conn %s: read error: %v (CloseStatus: %d)", gc.ID, err, closeStatus)
			}
			return
		}

		if typ != websocket.MessageText {
			s.Logger.Warnf("Conn %s: ignoring non-text message type %d.", gc.ID, typ)
			continue
		}

		s.handleMessage(gc, msg)
	}
}

// writePump drains the outbound queue and keeps the connection alive with
// periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, gc *GameConnection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-gc.OutChan:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("Conn %s: failed to marshal outgoing %s event: %v", gc.ID, ev.Type, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Conn %s: write failed: %v", gc.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Conn %s: ping failed: %v. Assuming disconnect.", gc.ID, err)
				return
			}
		}
	}
}
