package handler

import (
	"fmt"
	"time"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
)

type sendRequest struct {
	DestinationChain uint64 `json:"destination_chain"`
	Receiver         string `json:"receiver"`
	Payload          []byte `json:"payload"`
	Token            string `json:"token"`
	Amount           uint64 `json:"amount"`
	FeeToken         string `json:"fee_token"`
}

func (r sendRequest) validate() error {
	if r.DestinationChain == 0 {
		return fmt.Errorf("missing_destination_chain")
	}
	if r.Receiver == "" {
		return fmt.Errorf("missing_receiver")
	}
	if r.FeeToken == "" {
		return fmt.Errorf("missing_fee_token")
	}
	return nil
}

func (r sendRequest) toDomain() models.SendRequest {
	return models.SendRequest{
		Destination: id.ChainID(r.DestinationChain),
		Receiver:    id.Address(r.Receiver),
		Payload:     r.Payload,
		Token:       id.Address(r.Token),
		Amount:      r.Amount,
		FeeToken:    id.Address(r.FeeToken),
	}
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

type retryRequest struct {
	Payload []byte `json:"payload"`
}

type allowRequest struct {
	Allowed bool `json:"allowed"`
}

type routerRequest struct {
	Identity string `json:"identity"`
}

type failureRecord struct {
	MessageID string    `json:"message_id"`
	Reason    string    `json:"reason"`
	State     string    `json:"state"`
	FailedAt  time.Time `json:"failed_at"`
}

type failedListResponse struct {
	Messages []failureRecord `json:"messages"`
}

func toFailureRecord(rec models.FailureRecord) failureRecord {
	return failureRecord{
		MessageID: rec.MessageID.String(),
		Reason:    rec.Reason,
		State:     rec.State.String(),
		FailedAt:  rec.FailedAt,
	}
}
