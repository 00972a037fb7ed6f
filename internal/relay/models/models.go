// Package models holds the relay domain types shared by the codec, stores,
// service, and transport layers.
package models

import (
	"time"

	id "relaygate/pkg/domain"
)

// ErrorState classifies a message outcome. The zero value is StateResolved so
// any message lacking an explicit failure record is classified as resolved
// without extra bookkeeping.
type ErrorState int

const (
	StateResolved ErrorState = iota
	StateBasic
)

func (s ErrorState) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateBasic:
		return "basic"
	default:
		return "unknown"
	}
}

// TokenAmount pairs a token identity with an amount. Every message carries
// exactly one entry; a zero amount marks a payload-only message.
type TokenAmount struct {
	Token  id.Address `json:"token"`
	Amount uint64     `json:"amount"`
}

// ExtraArgs carries transport-specific execution arguments for the
// destination side.
type ExtraArgs struct {
	GasLimit uint64 `json:"gas_limit"`
}

// OutboundMessage is the wire message handed to the router. Constructed fresh
// per send and never persisted; its only durable trace is the returned
// message ID.
type OutboundMessage struct {
	Receiver     id.Address
	Payload      []byte
	TokenAmounts []TokenAmount
	FeeToken     id.Address
	ExtraArgs    ExtraArgs
}

// InboundMessage is a decoded delivery from the router.
type InboundMessage struct {
	ID           id.MessageID
	SourceChain  id.ChainID
	Sender       id.Address
	Payload      []byte
	TokenAmounts []TokenAmount
}

// FailureRecord is the durable trace of an inbound message whose application
// failed. Its existence is the sole signal that a message is pending
// recovery.
type FailureRecord struct {
	MessageID id.MessageID
	Reason    string
	State     ErrorState
	FailedAt  time.Time
}

// SendRequest describes an outbound send.
type SendRequest struct {
	Destination id.ChainID
	Receiver    id.Address
	Payload     []byte
	Token       id.Address
	Amount      uint64
	FeeToken    id.Address
}
