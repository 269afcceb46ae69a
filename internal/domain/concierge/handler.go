package concierge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/middleware"
	"github.com/aihotel/hotel-api/internal/pkg/errorhandler"
	"github.com/aihotel/hotel-api/internal/pkg/response"
	"github.com/aihotel/hotel-api/internal/pkg/validator"
)

// WebSocket constants
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Handler handles concierge HTTP requests
type Handler struct {
	service     *Service
	rateLimiter *RateLimiter
	upgrader    websocket.Upgrader
}

// NewHandler creates concierge handler. limiter may be nil.
func NewHandler(service *Service, limiter *RateLimiter, allowedOrigins []string) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				if len(allowedOrigins) == 0 || origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}

				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// Chat handles POST /concierge/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	if !h.rateLimiter.Allow(r.Context(), clientKey(r)) {
		response.TooManyRequests(w)
		return
	}

	reply, err := h.service.Chat(r.Context(), callerID(r), req.Message, req.History)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, reply)
}

// RecommendType handles POST /concierge/recommend-type
func (h *Handler) RecommendType(w http.ResponseWriter, r *http.Request) {
	var req RecommendTypeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	rec := h.service.RecommendType(r.Context(), req.Guests, req.TripType)
	response.OK(w, &RecommendTypeResponse{Recommendation: rec})
}

// AdminLogs handles GET /admin/chat-logs?limit=&offset=
func (h *Handler) AdminLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := max(queryInt(r, "offset", 0), 0)

	logs, total, err := h.service.Logs(r.Context(), limit, offset)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, "concierge.logs", err)
		return
	}

	items := make([]*ChatLogResponse, len(logs))
	for i, l := range logs {
		items[i] = ChatLogResponseFromEntity(l)
	}
	response.List(w, items, total)
}

// wsEvent is a frame sent to a socket client
type wsEvent struct {
	Type  string `json:"type"`
	Reply *Reply `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// WebSocket handles GET /concierge/ws. Each socket keeps its own history.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	userID := callerID(r)
	key := clientKey(r)
	send := make(chan *wsEvent, 16)
	done := make(chan struct{})

	go h.wsWriter(conn, send, done)
	h.wsReader(r.Context(), conn, userID, key, send)

	close(send)
	<-done
}

func (h *Handler) wsReader(ctx context.Context, conn *websocket.Conn, userID uuid.NullUUID, key string, send chan<- *wsEvent) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var history []Turn
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Concierge socket closed")
			}
			return
		}

		var msg struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			send <- &wsEvent{Type: "error", Error: "Invalid message"}
			continue
		}

		if !h.rateLimiter.Allow(ctx, key) {
			send <- &wsEvent{Type: "error", Error: "Too many messages, please slow down"}
			continue
		}

		reply, err := h.service.Chat(ctx, userID, msg.Message, history)
		if err != nil {
			send <- &wsEvent{Type: "error", Error: err.Error()}
			continue
		}

		history = append(history,
			Turn{Role: "user", Content: msg.Message},
			Turn{Role: "assistant", Content: reply.Reply},
		)
		if len(history) > MaxHistory {
			history = history[len(history)-MaxHistory:]
		}
		send <- &wsEvent{Type: "reply", Reply: reply}
	}
}

func (h *Handler) wsWriter(conn *websocket.Conn, send <-chan *wsEvent, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case event, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				drain(send)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				drain(send)
				return
			}
		}
	}
}

// drain discards events until the reader closes send
func drain(send <-chan *wsEvent) {
	go func() {
		for range send {
		}
	}()
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		response.ValidationError(w, map[string]string{"message": "This field is required"})
	case errors.Is(err, ErrMessageTooLong):
		response.ValidationError(w, map[string]string{"message": "Value is too long (max: 2000)"})
	default:
		errorhandler.HandleInternal(r.Context(), w, "concierge.chat", err)
	}
}

func callerID(r *http.Request) uuid.NullUUID {
	if id := middleware.GetUserID(r.Context()); id != uuid.Nil {
		return uuid.NullUUID{UUID: id, Valid: true}
	}
	return uuid.NullUUID{}
}

// clientKey identifies the caller for rate limiting: user id when signed in, else IP
func clientKey(r *http.Request) string {
	if id := middleware.GetUserID(r.Context()); id != uuid.Nil {
		return "user:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
