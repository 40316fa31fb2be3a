package service

import (
	"context"
	"encoding/json"

	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/internal/websocket"
	"smartfusion-dashboard/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// INotifierService bridges the in-process event bus to the websocket
// hub so every open dashboard view learns about registry and transcript
// changes without polling.
type INotifierService interface {
	Consume(ctx context.Context) error
}

type notifierService struct {
	pubSub *gochannel.GoChannel
	hub    *websocket.Hub
	logger logger.ILogger
}

func NewNotifierService(pubSub *gochannel.GoChannel, hub *websocket.Hub, log logger.ILogger) INotifierService {
	return &notifierService{
		pubSub: pubSub,
		hub:    hub,
		logger: log,
	}
}

func (ns *notifierService) Consume(ctx context.Context) error {
	messages, err := ns.pubSub.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ns.processMessage(msg)
		}
	}()

	return nil
}

func (ns *notifierService) processMessage(msg *message.Message) {
	var evt events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		ns.logger.Error("Notifier", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	ns.hub.Broadcast(dto.Notification{
		Type:       evt.Type,
		Data:       evt.Data,
		OccurredAt: evt.OccurredAt,
	})
	msg.Ack()
}
