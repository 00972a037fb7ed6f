// Package kafka is the relay transport. Each chain is reachable through its
// own topic; producing to a destination topic submits a message, and the
// consumer group delivering from the local chain's topic is the registered
// router identity invoking the receive callback.
package kafka

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/crypto/sha3"

	"relaygate/internal/relay/codec"
	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
)

// TopicForChain names the topic carrying deliveries into a chain.
func TopicForChain(chain id.ChainID) string {
	return fmt.Sprintf("relay.chain.%d", chain)
}

// RouterConfig holds the transport-side settings.
type RouterConfig struct {
	// Identity is the relay identity this router submits and delivers under.
	Identity string
	// LocalChain and SenderAddress are stamped on every outbound envelope.
	LocalChain    id.ChainID
	SenderAddress id.Address
	// FeeBase and FeePerByte form the router's deterministic fee schedule,
	// quoted per encoded message.
	FeeBase    uint64
	FeePerByte uint64
}

// Router submits outbound messages and quotes their fees.
type Router struct {
	client *kgo.Client
	cfg    RouterConfig
	logger *slog.Logger
}

// NewRouter constructs a Kafka-backed router.
func NewRouter(client *kgo.Client, cfg RouterConfig, logger *slog.Logger) *Router {
	return &Router{client: client, cfg: cfg, logger: logger}
}

// Identity returns the relay identity this router operates under.
func (r *Router) Identity() string {
	return r.cfg.Identity
}

// QuoteFee prices a message against the router's fee schedule. The quote is
// deterministic for a given message, so quote-then-submit behaves atomically
// from the unit's perspective.
func (r *Router) QuoteFee(_ context.Context, _ id.ChainID, msg models.OutboundMessage) (uint64, error) {
	wire, err := codec.EncodeWire(r.cfg.LocalChain, r.cfg.SenderAddress, "", msg)
	if err != nil {
		return 0, fmt.Errorf("size message for quote: %w", err)
	}
	return r.cfg.FeeBase + r.cfg.FeePerByte*uint64(len(wire)), nil
}

// Submit assigns a unique message ID, stamps it on the wire envelope, and
// produces to the destination chain's topic. Fire-and-forget beyond broker
// acknowledgement.
func (r *Router) Submit(ctx context.Context, destination id.ChainID, msg models.OutboundMessage) (id.MessageID, error) {
	messageID := newMessageID(destination, msg.Receiver)
	wire, err := codec.EncodeWire(r.cfg.LocalChain, r.cfg.SenderAddress, messageID, msg)
	if err != nil {
		return "", err
	}

	record := &kgo.Record{
		Topic: TopicForChain(destination),
		Key:   []byte(messageID),
		Value: wire,
	}
	if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return "", fmt.Errorf("produce to %s: %w", record.Topic, err)
	}

	r.logger.DebugContext(ctx, "message produced",
		"message_id", messageID,
		"topic", record.Topic,
		"bytes", len(wire),
	)
	return messageID, nil
}

// newMessageID derives a unique identifier from a fresh nonce plus the
// routing coordinates.
func newMessageID(destination id.ChainID, receiver id.Address) id.MessageID {
	nonce := uuid.New()
	var dest [8]byte
	binary.BigEndian.PutUint64(dest[:], uint64(destination))

	h := sha3.New256()
	h.Write(nonce[:])
	h.Write(dest[:])
	h.Write([]byte(receiver))
	return id.MessageID(hex.EncodeToString(h.Sum(nil)))
}
