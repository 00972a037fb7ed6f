package models

import "errors"

// Domain errors surfaced by the relay core. Services return these (optionally
// wrapped) so transport layers can translate them into HTTP responses.
var (
	// ErrUnauthorized is returned when the caller lacks the admin role for a
	// privileged mutation.
	ErrUnauthorized = errors.New("access denied")

	// ErrDestinationNotAllowlisted rejects sends to chains missing from the
	// destination allowlist.
	ErrDestinationNotAllowlisted = errors.New("destination chain not allowlisted")

	// ErrSourceChainNotAllowed rejects deliveries from chains missing from
	// the source allowlist.
	ErrSourceChainNotAllowed = errors.New("source chain not allowed")

	// ErrSenderNotAllowed rejects deliveries whose sender is not allowlisted
	// for its source chain.
	ErrSenderNotAllowed = errors.New("sender not allowed")

	// ErrInvalidRouter rejects receive callbacks from any identity other
	// than the registered router.
	ErrInvalidRouter = errors.New("invalid router")

	// ErrInsufficientBalance fails a send whose fee exceeds the unit's
	// native balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrMessageNotFailed fails a recovery retry for a message with no
	// failure record.
	ErrMessageNotFailed = errors.New("message not failed")

	// ErrMalformedPayload rejects inbound wire bytes that do not match the
	// expected layout, before any allowlist or dispatch step.
	ErrMalformedPayload = errors.New("malformed payload")
)
