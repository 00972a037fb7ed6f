package kafka

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Receiver is the inbound callback surface the consumer delivers into.
type Receiver interface {
	Receive(ctx context.Context, caller string, raw []byte) error
}

// Consumer polls the local chain's topic and hands each record to the
// receive callback under the router identity. A rejected delivery (bad
// caller, malformed bytes, allowlist miss) is logged and the offset moves on;
// application failures never surface here because the callback ledgers them.
type Consumer struct {
	client   *kgo.Client
	identity string
	receiver Receiver
	logger   *slog.Logger
}

// NewConsumer constructs the inbound delivery loop.
func NewConsumer(client *kgo.Client, identity string, receiver Receiver, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, identity: identity, receiver: receiver, logger: logger}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if fetches.IsClientClosed() {
			return kgo.ErrClientClosed
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			if err := c.receiver.Receive(ctx, c.identity, record.Value); err != nil {
				c.logger.WarnContext(ctx, "delivery rejected",
					"topic", record.Topic,
					"partition", record.Partition,
					"offset", record.Offset,
					"error", err,
				)
			}
		})
	}
}
