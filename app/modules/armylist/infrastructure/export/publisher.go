package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ArmyEntryTopic is the topic finished army records are published on.
const ArmyEntryTopic = "armylists.army_entry.v1"

// Metadata keys set on every published message.
const (
	MetadataArmyID    = "army_id"
	MetadataPlayer    = "player_name"
	MetadataEventType = "event_type"
	MetadataValidated = "validated"
)

// NewInProcessPubSub returns the in-memory pub/sub used when no broker is configured.
func NewInProcessPubSub(logger *slog.Logger, buffer int64) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: buffer},
		watermill.NewSlogLogger(logger),
	)
}

// Publisher sends one message per army to a watermill topic.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewPublisher creates a Publisher. An empty topic uses ArmyEntryTopic.
func NewPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = ArmyEntryTopic
	}
	return &Publisher{publisher: publisher, topic: topic, logger: logger}
}

var _ Sink = (*Publisher)(nil)

func (p *Publisher) Export(ctx context.Context, armies []armytypes.ArmyEntry) error {
	msgs := make([]*message.Message, 0, len(armies))
	for i := range armies {
		payload, err := json.Marshal(&armies[i])
		if err != nil {
			return fmt.Errorf("failed to marshal army %q: %w", armies[i].ID, err)
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.SetContext(ctx)
		msg.Metadata.Set(MetadataArmyID, armies[i].ID)
		msg.Metadata.Set(MetadataPlayer, armies[i].PlayerName)
		msg.Metadata.Set(MetadataEventType, string(armies[i].EventType))
		msg.Metadata.Set(MetadataValidated, fmt.Sprint(armies[i].Validated))
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := p.publisher.Publish(p.topic, msgs...); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish army entries",
			attr.String("topic", p.topic),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish army entries: %w", err)
	}
	p.logger.InfoContext(ctx, "Published army entries",
		attr.String("topic", p.topic),
		attr.Int("count", len(msgs)),
	)
	return nil
}
