package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"

	id "relaygate/pkg/domain"
)

// EnsureTopics provisions the relay topics for the given chains. Safe to call
// on every startup; existing topics are left untouched.
func EnsureTopics(ctx context.Context, adm *kadm.Client, chains ...id.ChainID) error {
	if len(chains) == 0 {
		return nil
	}
	topics := make([]string, 0, len(chains))
	for _, chain := range chains {
		topics = append(topics, TopicForChain(chain))
	}

	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}
