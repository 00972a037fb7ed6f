package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"relaygate/internal/relay/codec"
)

func TestTopicForChain(t *testing.T) {
	assert.Equal(t, "relay.chain.7", TopicForChain(7))
	assert.Equal(t, "relay.chain.1337", TopicForChain(1337))
}

func TestQuoteFee(t *testing.T) {
	router := NewRouter(nil, RouterConfig{
		Identity:      "router-main",
		LocalChain:    1,
		SenderAddress: "unit-a",
		FeeBase:       100,
		FeePerByte:    2,
	}, slog.New(slog.DiscardHandler))

	msg := codec.EncodeOutbound("receiver-b", []byte("payload"), "token-t", 5, "native")

	fee, err := router.QuoteFee(context.Background(), 7, msg)
	require.NoError(t, err)

	wire, err := codec.EncodeWire(1, "unit-a", "", msg)
	require.NoError(t, err)
	assert.Equal(t, 100+2*uint64(len(wire)), fee)

	// Deterministic for the same message.
	again, err := router.QuoteFee(context.Background(), 7, msg)
	require.NoError(t, err)
	assert.Equal(t, fee, again)
}

func TestConsumerStopsOnClosedClient(t *testing.T) {
	// The broker is never dialed; closing the client must end the loop even
	// while the context is still live.
	client, err := kgo.NewClient(
		kgo.SeedBrokers("localhost:1"),
		kgo.ConsumeTopics(TopicForChain(1)),
	)
	require.NoError(t, err)
	client.Close()

	consumer := NewConsumer(client, "router-main", nopReceiver{}, slog.New(slog.DiscardHandler))

	done := make(chan error, 1)
	go func() { done <- consumer.Run(context.Background()) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, kgo.ErrClientClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer kept polling a closed client")
	}
}

type nopReceiver struct{}

func (nopReceiver) Receive(context.Context, string, []byte) error { return nil }

func TestNewMessageID(t *testing.T) {
	a := newMessageID(7, "receiver-b")
	b := newMessageID(7, "receiver-b")

	// Hex-encoded 256-bit digest, unique per call.
	assert.Len(t, a.String(), 64)
	assert.NotEqual(t, a, b)
}
