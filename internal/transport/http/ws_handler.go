package http

import (
	"encoding/json"
	"net/http"
	"time"

	"drivetest-quiz/internal/app"
	"drivetest-quiz/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler runs one quiz session per websocket connection.
type WSHandler struct {
	service      *app.QuizService
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	tickInterval time.Duration
	now          func() time.Time
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tickInterval: time.Second,
		now:          time.Now,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Label domain.Label `json:"label"`
}

type tickPayload struct {
	Seconds int    `json:"seconds"`
	Display string `json:"display"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a quiz and applies client actions until submit.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx)
	if err != nil {
		h.logger.Error("start quiz", zap.Error(err))
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := session.ID
	startedAt := session.StartTime
	submitted := false
	defer func() {
		if !submitted {
			h.service.Abandon(ctx, sessionID)
		}
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	// single writer; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("session_id", sessionID), zap.Error(err))
				return
			}
		}
	}()

	// elapsed clock for display only; scoring uses the submit timestamp
	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				elapsed := h.now().Sub(startedAt)
				msg := outboundMessage[any]{Type: "tick", Payload: tickPayload{
					Seconds: int(elapsed / time.Second),
					Display: app.FormatElapsed(elapsed),
				}}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	replyErr := func(err error) {
		reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	reply(outboundMessage[any]{Type: "state", Payload: session.View()})

	for !submitted {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var (
			view app.SessionView
			err  error
		)
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			view, err = h.service.SelectAnswer(ctx, sessionID, payload.Label)
		case "next":
			view, err = h.service.Next(ctx, sessionID)
		case "previous":
			view, err = h.service.Previous(ctx, sessionID)
		case "submit":
			results, err := h.service.Submit(ctx, sessionID)
			if err != nil {
				replyErr(err)
				continue
			}
			submitted = true
			reply(outboundMessage[any]{Type: "results", Payload: app.NewResultsView(results)})
			continue
		default:
			reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
			continue
		}
		if err != nil {
			replyErr(err)
			continue
		}
		reply(outboundMessage[any]{Type: "state", Payload: view})
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}
