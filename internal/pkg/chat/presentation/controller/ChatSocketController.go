package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	qport "mobelhaus/internal/infrastructure/queue/port"
	"mobelhaus/internal/infrastructure/realtime"
	"mobelhaus/internal/metrics"
	chat "mobelhaus/internal/pkg/chat/application/domain"
	"mobelhaus/internal/pkg/chat/application/task"
	"mobelhaus/internal/pkg/chat/application/usecase"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

const defaultReadTimeout = 60 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The upstream platform terminates origin checks along with auth.
		return true
	},
}

// inboundEvent is the client -> relay frame. Anything that does not parse,
// or whose Type is not "chat_message", is dropped without closing the
// connection; unknown types stay forward-compatible with future event kinds.
type inboundEvent struct {
	Type       string `json:"type"`
	SenderID   string `json:"senderId"`
	SenderRole string `json:"senderRole"`
	Content    string `json:"content"`
}

// outboundEvent is the relay -> client broadcast envelope.
type outboundEvent struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type messagePayload struct {
	ID          int64     `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderRole  string    `json:"senderRole"`
	Body        string    `json:"message"`
	TaggedUsers []string  `json:"taggedUsers"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChatSocketController handles the websocket endpoint and relays inbound
// chat-message events: parse, persist, broadcast the persisted form to every
// open connection including the sender. Every per-message failure is
// isolated; the only terminal failure is the transport itself closing.
type ChatSocketController struct {
	registry        *realtime.Registry
	postMessageUC   *usecase.PostMessageUseCase
	queue           qport.Client
	logger          zerolog.Logger
	inflightTimeout time.Duration
	devIdentity     bool
}

func NewChatSocketController(repo repository.MessageRepository, registry *realtime.Registry, queue qport.Client, logger zerolog.Logger, devIdentity bool) *ChatSocketController {
	return &ChatSocketController{
		registry:        registry,
		postMessageUC:   usecase.NewPostMessageUseCase(repo),
		queue:           queue,
		logger:          logger.With().Str("component", "chat_relay").Logger(),
		inflightTimeout: 5 * time.Second,
		devIdentity:     devIdentity,
	}
}

// Handle upgrades the HTTP connection and processes frames until the client
// disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, userRole := principalFrom(c, ctl.devIdentity)
		if userID == "" || userRole == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authenticated principal required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.logger.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		conn := realtime.NewConnection(userID, userRole, ws)
		ctl.registry.Register(conn)
		metrics.ConnectionsOpen.Inc()
		ctl.logger.Info().Str("user_id", userID).Str("session_id", conn.ID).Msg("client connected to chat")

		defer func() {
			ctl.registry.Unregister(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			metrics.ConnectionsOpen.Dec()
			ctl.logger.Info().Str("user_id", userID).Str("session_id", conn.ID).Msg("client disconnected from chat")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.logger.Debug().Err(err).Str("session_id", conn.ID).Msg("read error")
				}
				return
			}
			ctl.handleFrame(c.Request.Context(), conn, data)
		}
	}
}

// handleFrame processes one inbound frame to completion: parse, persist,
// broadcast. Malformed input and persistence failures are logged and
// dropped; the connection stays open and the sender gets no error reply
// (the protocol has no error channel).
func (ctl *ChatSocketController) handleFrame(parent context.Context, conn *realtime.Connection, data []byte) {
	var event inboundEvent
	if err := json.Unmarshal(data, &event); err != nil {
		metrics.FramesDropped.WithLabelValues("malformed").Inc()
		ctl.logger.Debug().Err(err).Str("session_id", conn.ID).Msg("dropping malformed frame")
		return
	}

	if event.Type != "chat_message" {
		metrics.FramesDropped.WithLabelValues("unknown_type").Inc()
		ctl.logger.Debug().Str("type", event.Type).Str("session_id", conn.ID).Msg("dropping unrecognized event type")
		return
	}

	ctx, cancel := context.WithTimeout(parent, ctl.inflightTimeout)
	defer cancel()

	saved, err := ctl.postMessageUC.Execute(ctx, usecase.PostMessageInput{
		SenderID:   event.SenderID,
		SenderRole: chat.SenderRole(event.SenderRole),
		Content:    event.Content,
	})
	if err != nil {
		// No broadcast, no retry, no acknowledgement to the sender.
		if errors.Is(err, usecase.ErrPersistence) {
			metrics.FramesDropped.WithLabelValues("persistence").Inc()
			ctl.logger.Error().Err(err).Str("sender_id", event.SenderID).Msg("message dropped: persistence failed")
		} else {
			metrics.FramesDropped.WithLabelValues("invalid").Inc()
			ctl.logger.Debug().Err(err).Str("sender_id", event.SenderID).Msg("message dropped: invalid")
		}
		return
	}

	payload, err := json.Marshal(outboundEvent{
		Type:    "new_message",
		Message: toPayload(*saved),
	})
	if err != nil {
		ctl.logger.Error().Err(err).Int64("message_id", saved.ID).Msg("failed to encode broadcast")
		return
	}

	metrics.MessagesPersisted.Inc()
	delivered := ctl.registry.Broadcast(payload)
	metrics.BroadcastDeliveries.Add(float64(delivered))

	ctl.recordMentions(ctx, saved)
}

// recordMentions hands the persisted tag list to the background worker.
// Strictly after (and independent of) the broadcast: an enqueue failure is
// logged and forgotten.
func (ctl *ChatSocketController) recordMentions(ctx context.Context, msg *chat.Message) {
	if ctl.queue == nil || len(msg.TaggedUsers) == 0 {
		return
	}
	body, err := json.Marshal(task.RecordMentionsPayload{
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		TaggedUsers: msg.TaggedUsers,
	})
	if err != nil {
		ctl.logger.Error().Err(err).Int64("message_id", msg.ID).Msg("failed to encode mention task")
		return
	}
	_, err = ctl.queue.Enqueue(ctx, qport.Task{Type: task.RecordMentionsTaskType, Payload: body},
		qport.EnqueueOption{Queue: "chat", MaxRetry: 3})
	if err != nil {
		ctl.logger.Warn().Err(err).Int64("message_id", msg.ID).Msg("mention task enqueue failed")
	}
}

func toPayload(msg chat.Message) messagePayload {
	tags := msg.TaggedUsers
	if tags == nil {
		tags = []string{}
	}
	return messagePayload{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		SenderRole:  string(msg.SenderRole),
		Body:        msg.Body,
		TaggedUsers: tags,
		CreatedAt:   msg.CreatedAt,
	}
}
