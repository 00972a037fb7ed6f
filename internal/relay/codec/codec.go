// Package codec builds outbound wire messages and decodes inbound ones. The
// wire layout is an explicit, versioned JSON envelope validated field by
// field; the relay is never trusted to hand over well-formed bytes.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
)

// WireVersion is the only envelope version this unit speaks.
const WireVersion = 1

// InboundGasLimit is the fixed resource ceiling stamped on every outbound
// message for execution on the destination side.
const InboundGasLimit = 200_000

// EncodeOutbound packages an outbound message. Pure and deterministic: always
// exactly one token-amount entry (a zero amount marks payload-only messages)
// and the fixed inbound gas ceiling.
func EncodeOutbound(receiver id.Address, payload []byte, token id.Address, amount uint64, feeToken id.Address) models.OutboundMessage {
	return models.OutboundMessage{
		Receiver:     receiver,
		Payload:      payload,
		TokenAmounts: []models.TokenAmount{{Token: token, Amount: amount}},
		FeeToken:     feeToken,
		ExtraArgs:    models.ExtraArgs{GasLimit: InboundGasLimit},
	}
}

type wireTokenAmount struct {
	Token  string `json:"token"`
	Amount uint64 `json:"amount"`
}

type wireExtraArgs struct {
	GasLimit uint64 `json:"gas_limit"`
}

// wireEnvelope is the on-the-wire layout shared by both directions. Outbound
// fills receiver, fee token, and extra args; the delivering relay stamps the
// message ID before handing the envelope to the destination.
type wireEnvelope struct {
	Version      int               `json:"version"`
	MessageID    string            `json:"message_id"`
	SourceChain  uint64            `json:"source_chain"`
	Sender       string            `json:"sender"`
	Receiver     string            `json:"receiver,omitempty"`
	Payload      []byte            `json:"payload"`
	TokenAmounts []wireTokenAmount `json:"token_amounts"`
	FeeToken     string            `json:"fee_token,omitempty"`
	ExtraArgs    *wireExtraArgs    `json:"extra_args,omitempty"`
}

// EncodeWire serializes an outbound message for submission.
func EncodeWire(sourceChain id.ChainID, sender id.Address, messageID id.MessageID, msg models.OutboundMessage) ([]byte, error) {
	env := wireEnvelope{
		Version:     WireVersion,
		MessageID:   messageID.String(),
		SourceChain: uint64(sourceChain),
		Sender:      sender.String(),
		Receiver:    msg.Receiver.String(),
		Payload:     msg.Payload,
		FeeToken:    msg.FeeToken.String(),
		ExtraArgs:   &wireExtraArgs{GasLimit: msg.ExtraArgs.GasLimit},
	}
	for _, ta := range msg.TokenAmounts {
		env.TokenAmounts = append(env.TokenAmounts, wireTokenAmount{Token: ta.Token.String(), Amount: ta.Amount})
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode wire envelope: %w", err)
	}
	return out, nil
}

// DecodeInbound parses and validates raw relay bytes. Any structural mismatch
// fails with ErrMalformedPayload before allowlist checks or dispatch run.
func DecodeInbound(raw []byte) (models.InboundMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var env wireEnvelope
	if err := dec.Decode(&env); err != nil {
		return models.InboundMessage{}, fmt.Errorf("%w: %v", models.ErrMalformedPayload, err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return models.InboundMessage{}, fmt.Errorf("%w: trailing data after envelope", models.ErrMalformedPayload)
	}
	if env.Version != WireVersion {
		return models.InboundMessage{}, fmt.Errorf("%w: unsupported version %d", models.ErrMalformedPayload, env.Version)
	}
	if env.MessageID == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing message_id", models.ErrMalformedPayload)
	}
	if env.SourceChain == 0 {
		return models.InboundMessage{}, fmt.Errorf("%w: missing source_chain", models.ErrMalformedPayload)
	}
	if env.Sender == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing sender", models.ErrMalformedPayload)
	}
	if len(env.TokenAmounts) != 1 {
		return models.InboundMessage{}, fmt.Errorf("%w: expected exactly one token amount, got %d", models.ErrMalformedPayload, len(env.TokenAmounts))
	}

	msg := models.InboundMessage{
		ID:          id.MessageID(env.MessageID),
		SourceChain: id.ChainID(env.SourceChain),
		Sender:      id.Address(env.Sender),
		Payload:     env.Payload,
	}
	for _, ta := range env.TokenAmounts {
		msg.TokenAmounts = append(msg.TokenAmounts, models.TokenAmount{Token: id.Address(ta.Token), Amount: ta.Amount})
	}
	return msg, nil
}

// PayloadEnvelope is the inner payload layout: a dispatch selector plus its
// arguments. It is unwrapped at apply time, never handed to the transport
// layer raw, so the payload can only ever target the unit's own dispatch
// table.
type PayloadEnvelope struct {
	Selector string          `json:"selector"`
	Args     json.RawMessage `json:"args"`
}

// EncodePayload builds the inner payload envelope.
func EncodePayload(selector string, args any) ([]byte, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode payload args: %w", err)
	}
	out, err := json.Marshal(PayloadEnvelope{Selector: selector, Args: rawArgs})
	if err != nil {
		return nil, fmt.Errorf("encode payload envelope: %w", err)
	}
	return out, nil
}

// DecodePayload unwraps the inner payload envelope. A failure here is an
// application failure, not a wire decode failure: the message was delivered
// intact, its payload just cannot be applied, which is exactly the case
// recovery retries with a corrected payload exist for.
func DecodePayload(payload []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode payload envelope: %w", err)
	}
	if env.Selector == "" {
		return PayloadEnvelope{}, fmt.Errorf("decode payload envelope: missing selector")
	}
	return env, nil
}
