package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeMessageSent         = "message.sent"
	TypeConversationStarted = "conversation.started"
)

// Event is the envelope published for every successful send/start.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	SenderUsername string `json:"senderUsername,omitempty"`
	UnixTime       int64  `json:"unixTime"`
}

// Producer publishes domain events to kafka. Publishing is fire-and-forget:
// a broker failure is logged and never fails the originating request.
type Producer struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewProducer(brokers []string, topic string, log *zap.SugaredLogger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(ctx context.Context, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Errorw("marshal event", "type", ev.Type, "err", err)
		return
	}
	msg := kafka.Message{Key: []byte(ev.ConversationID), Value: b, Time: time.Now()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Errorw("kafka publish", "type", ev.Type, "err", err)
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
