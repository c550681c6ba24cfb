package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"quizplay-service/internal/app"
)

type WSHandler struct {
	service  *app.Service
	log      *zap.Logger
	tick     time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service, log *zap.Logger, tick time.Duration) *WSHandler {
	if tick <= 0 {
		tick = time.Second
	}
	return &WSHandler{
		service: service,
		log:     log,
		tick:    tick,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type tickPayload struct {
	Elapsed int `json:"elapsed"`
}

type textPayload struct {
	Text string `json:"text"`
}

// shareTarget hands the summary to the client's share sheet or clipboard.
type shareTarget struct {
	kind      string
	available bool
	push      func(outboundMessage[any]) bool
}

func (t shareTarget) Share(_ context.Context, text string) error {
	if !t.available {
		return app.ErrShareUnavailable
	}
	if !t.push(outboundMessage[any]{Type: t.kind, Payload: textPayload{Text: text}}) {
		return app.ErrShareUnavailable
	}
	return nil
}

// ServeWS upgrades a browser tab's connection and binds it to a UI session.
// Query: sessionId (optional, generated when empty), share=1 when the client has a share sheet.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	canShare := r.URL.Query().Get("share") == "1"

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	h.service.Open(ctx, sessionID)
	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(ctx, sessionID)
	defer cancel()

	log := h.log.With(zap.String("session", sessionID))
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	tickerDone := make(chan struct{})

	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !pushUntil(send, closeSignals, outboundMessage[any]{Type: "view", Payload: update.View}) {
					return
				}
				if update.Notice != nil {
					if !pushUntil(send, closeSignals, outboundMessage[any]{Type: "notice", Payload: update.Notice}) {
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				elapsed, ok := h.service.Elapsed(sessionID)
				if !ok {
					continue
				}
				if !pushUntil(send, closeSignals, outboundMessage[any]{Type: "tick", Payload: tickPayload{Elapsed: elapsed}}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	share := shareTarget{kind: "share", available: canShare, push: push}
	clipboard := shareTarget{kind: "clipboard", available: true, push: push}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		action, err := decodeAction(inbound, share, clipboard)
		if err != nil {
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			continue
		}
		if err := h.service.Dispatch(ctx, sessionID, action); err != nil {
			log.Debug("action rejected", zap.String("type", inbound.Type), zap.Error(err))
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}

	close(closeSignals)
	<-updatesDone
	<-tickerDone
	close(send)
	<-writerDone
}

func pushUntil(send chan<- outboundMessage[any], done <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-done:
		return false
	}
}
