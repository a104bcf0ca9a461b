package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/monitoring"
)

type WSHandler struct {
	service  *app.StudyService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.StudyService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type joinedPayload struct {
	ViewID  string             `json:"viewId"`
	Library app.LibrarySummary `json:"library"`
}

// ServeWS upgrades HTTP requests to websockets and binds each connection to
// one study workspace for the learner named by ?userId=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("userId")
	if owner == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	workspace, err := h.service.Open(ctx, owner)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Close(workspace.ID)
	log := h.log.With(zap.String("view", workspace.ID), zap.String("owner", owner))

	updates, cancel := workspace.Study.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
			monitoring.WSMessages.WithLabelValues(msg.Type, "out").Inc()
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		ViewID:  workspace.ID,
		Library: workspace.Library.Summary(),
	}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "study", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	d := &dispatcher{workspace: workspace, log: log}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("ws read error", zap.Error(err))
			}
			break
		}
		monitoring.WSMessages.WithLabelValues(metricType(inbound.Type), "in").Inc()
		for _, msg := range d.handle(ctx, inbound) {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	workspace.Study.Wait()
}
