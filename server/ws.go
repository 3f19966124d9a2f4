package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sahaj-english/sahaj/analysis"
	"github.com/sahaj-english/sahaj/provider"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Event is one websocket message from the server.
type Event struct {
	// Type is "started", "progress", "result", "error", "cancelled" or "pong".
	Type      string             `json:"type"`
	RequestID string             `json:"requestId,omitempty"`
	Progress  *analysis.Progress `json:"progress,omitempty"`
	Result    *analysis.Outcome  `json:"result,omitempty"`
	Error     *ErrorResponse     `json:"error,omitempty"`
	TS        any                `json:"ts,omitempty"`
}

// wsConn serializes writes; progress events arrive from batch goroutines.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(ev)
}

// handleWS runs one analysis session. Each analyze message starts a request;
// a newer analyze or an explicit cancel aborts the one in flight.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()
	c := &wsConn{conn: conn}

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log().Warn().Err(err).Msg("ws read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if mt != websocket.TextMessage {
			continue
		}

		var msg apiRequest
		var ts struct {
			TS any `json:"ts"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = c.send(Event{Type: "error", Error: &ErrorResponse{Error: "invalid json", Kind: "invalid"}})
			continue
		}
		_ = json.Unmarshal(data, &ts)

		switch msg.Type {
		case "ping":
			_ = c.send(Event{Type: "pong", TS: ts.TS})
		case "cancel":
			cancel()
		case "analyze":
			cancel()
			req, err := msg.request(provider.ModeAnalysis)
			id := uuid.NewString()
			if err != nil {
				_, body := classify(err)
				body.RequestID = id
				_ = c.send(Event{Type: "error", RequestID: id, Error: &body})
				continue
			}

			ctx, reqCancel := context.WithCancel(r.Context())
			cancel = reqCancel
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.runWS(ctx, c, id, req)
			}()
		default:
			_ = c.send(Event{Type: "error", Error: &ErrorResponse{Error: "unknown message type", Kind: "invalid"}})
		}
	}
}

func (s *Server) runWS(ctx context.Context, c *wsConn, id string, req analysis.Request) {
	log := s.log().With().Str("request_id", id).Str("provider", string(req.Provider)).Logger()
	_ = c.send(Event{Type: "started", RequestID: id})

	svc := s.svc.WithProgress(func(p analysis.Progress) {
		if ctx.Err() != nil {
			return
		}
		_ = c.send(Event{Type: "progress", RequestID: id, Progress: &p})
	})

	start := time.Now()
	out, err := svc.Run(ctx, req)
	if ctx.Err() != nil {
		log.Debug().Msg("ws request cancelled")
		_ = c.send(Event{Type: "cancelled", RequestID: id})
		return
	}
	if err != nil {
		_, body := classify(err)
		body.RequestID = id
		log.Warn().Err(err).Str("kind", body.Kind).Msg("ws request failed")
		_ = c.send(Event{Type: "error", RequestID: id, Error: &body})
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("ws analysis done")
	_ = c.send(Event{Type: "result", RequestID: id, Result: out})
}
