// Package service implements the relay core: the allowlist-gated outbound
// path, the router-only receive callback with its self-dispatch, and failure
// ledger recovery.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"relaygate/internal/accesscontrol"
	"relaygate/internal/relay/allowlist"
	"relaygate/internal/relay/codec"
	"relaygate/internal/relay/dedup"
	"relaygate/internal/relay/dispatch"
	"relaygate/internal/relay/fees"
	"relaygate/internal/relay/ledger"
	"relaygate/internal/relay/metrics"
	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
	"relaygate/pkg/platform/sentinel"
	"relaygate/pkg/requestcontext"
)

// Router is the trusted-but-verified transport collaborator. The unit holds
// only its registered identity, never its internal state. Submission is
// fire-and-forget: the router is trusted for ID uniqueness and eventual
// delivery, and the unit never blocks waiting for delivery.
type Router interface {
	Identity() string
	QuoteFee(ctx context.Context, destination id.ChainID, msg models.OutboundMessage) (uint64, error)
	Submit(ctx context.Context, destination id.ChainID, msg models.OutboundMessage) (id.MessageID, error)
}

// Config holds the service's provisioning-time settings.
type Config struct {
	// RouterIdentity is the only identity allowed to invoke Receive. Rotated
	// at runtime through SetRouterIdentity.
	RouterIdentity string
	// NativeToken selects the native-asset fee path; any other fee token is
	// paid through an ERC-style approval.
	NativeToken id.Address
}

// Service owns the allowlist store and failure ledger exclusively; no other
// component writes them. Every public operation runs to a single outcome with
// no mid-flight cancellation of its own.
type Service struct {
	mu             sync.RWMutex // guards routerIdentity
	routerIdentity string

	nativeToken id.Address

	allow    allowlist.Store
	ledger   ledger.Store
	table    *dispatch.Table
	treasury fees.Treasury
	router   Router
	roles    accesscontrol.Checker
	dedup    dedup.Store

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for structured event records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDedup enables the processed-message redelivery guard.
func WithDedup(store dedup.Store) Option {
	return func(s *Service) { s.dedup = store }
}

// WithClock overrides the failure timestamp source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the relay service.
func New(cfg Config, allow allowlist.Store, led ledger.Store, table *dispatch.Table,
	treasury fees.Treasury, router Router, roles accesscontrol.Checker, opts ...Option) *Service {
	s := &Service{
		routerIdentity: cfg.RouterIdentity,
		nativeToken:    cfg.NativeToken,
		allow:          allow,
		ledger:         led,
		table:          table,
		treasury:       treasury,
		router:         router,
		roles:          roles,
		logger:         slog.Default(),
		tracer:         otel.Tracer("relaygate/relay"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RouterIdentity returns the currently registered router identity.
func (s *Service) RouterIdentity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routerIdentity
}

// Send runs the outbound path: allowlist gate, encode, fee quote, fee
// funding, submit. Any failure surfaces immediately to the caller; nothing is
// queued or retried.
func (s *Service) Send(ctx context.Context, req models.SendRequest) (id.MessageID, error) {
	ctx, span := s.tracer.Start(ctx, "relay.Send",
		trace.WithAttributes(attribute.Int64("relay.destination_chain", int64(req.Destination))))
	defer span.End()

	allowed, err := s.allow.IsDestinationAllowed(ctx, req.Destination)
	if err != nil {
		return "", fmt.Errorf("check destination allowlist: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("%w: chain %s", models.ErrDestinationNotAllowlisted, req.Destination)
	}

	msg := codec.EncodeOutbound(req.Receiver, req.Payload, req.Token, req.Amount, req.FeeToken)

	fee, err := s.router.QuoteFee(ctx, req.Destination, msg)
	if err != nil {
		return "", fmt.Errorf("quote fee: %w", err)
	}

	if req.FeeToken == s.nativeToken {
		if err := s.treasury.DebitNative(ctx, fee); err != nil {
			return "", fmt.Errorf("fund native fee: %w", err)
		}
	} else {
		if err := s.treasury.Approve(ctx, s.RouterIdentity(), req.FeeToken, fee); err != nil {
			return "", fmt.Errorf("approve fee: %w", err)
		}
	}

	messageID, err := s.router.Submit(ctx, req.Destination, msg)
	if err != nil {
		// A failed submission must not retain the fee.
		if req.FeeToken == s.nativeToken {
			if creditErr := s.treasury.CreditNative(ctx, fee); creditErr != nil {
				s.logger.ErrorContext(ctx, "CRITICAL: fee refund failed after submit failure",
					"fee", fee,
					"error", creditErr,
				)
			}
		}
		return "", fmt.Errorf("submit message: %w", err)
	}

	span.SetAttributes(attribute.String("relay.message_id", messageID.String()))
	s.logger.InfoContext(ctx, "message sent",
		"message_id", messageID,
		"destination_chain", req.Destination,
		"receiver", req.Receiver,
		"token", req.Token,
		"amount", req.Amount,
		"fee_token", req.FeeToken,
		"fee", fee,
	)
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
		s.metrics.FeesPaid.Observe(float64(fee))
	}
	return messageID, nil
}

// Receive is the single entry point a transport relay may invoke. The
// precondition checks run strictly before the re-entrant dispatch; each
// rejects this message only. Once preconditions pass, an application failure
// is ledgered and swallowed so the transport always observes a successful
// delivery and never retries non-deterministically.
func (s *Service) Receive(ctx context.Context, caller string, raw []byte) error {
	ctx, span := s.tracer.Start(ctx, "relay.Receive")
	defer span.End()

	if caller != s.RouterIdentity() {
		s.rejectDelivery(ctx, "invalid_router", "caller", caller)
		return fmt.Errorf("%w: %s", models.ErrInvalidRouter, caller)
	}

	msg, err := codec.DecodeInbound(raw)
	if err != nil {
		s.rejectDelivery(ctx, "malformed_payload", "error", err)
		return err
	}
	span.SetAttributes(
		attribute.String("relay.message_id", msg.ID.String()),
		attribute.Int64("relay.source_chain", int64(msg.SourceChain)),
	)

	allowed, err := s.allow.IsSourceAllowed(ctx, msg.SourceChain)
	if err != nil {
		return fmt.Errorf("check source allowlist: %w", err)
	}
	if !allowed {
		s.rejectDelivery(ctx, "source_chain_not_allowed", "source_chain", msg.SourceChain)
		return fmt.Errorf("%w: chain %s", models.ErrSourceChainNotAllowed, msg.SourceChain)
	}

	allowed, err = s.allow.IsSenderAllowed(ctx, msg.SourceChain, msg.Sender)
	if err != nil {
		return fmt.Errorf("check sender allowlist: %w", err)
	}
	if !allowed {
		s.rejectDelivery(ctx, "sender_not_allowed", "sender", msg.Sender)
		return fmt.Errorf("%w: %s on chain %s", models.ErrSenderNotAllowed, msg.Sender, msg.SourceChain)
	}

	if s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("check dedup marker: %w", err)
		}
		if seen {
			s.logger.InfoContext(ctx, "duplicate delivery ignored", "message_id", msg.ID)
			return nil
		}
	}

	s.logger.InfoContext(ctx, "message received",
		"message_id", msg.ID,
		"source_chain", msg.SourceChain,
		"sender", msg.Sender,
		"payload_bytes", len(msg.Payload),
		"token", msg.TokenAmounts[0].Token,
		"amount", msg.TokenAmounts[0].Amount,
	)
	if s.metrics != nil {
		s.metrics.MessagesReceived.Inc()
	}

	// Result-capturing apply: the inner error must not cross this boundary.
	if err := s.apply(ctx, msg.Payload); err != nil {
		s.recordFailure(ctx, msg.ID, err)
		return nil
	}

	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, msg.ID); err != nil {
			s.logger.WarnContext(ctx, "mark processed failed", "message_id", msg.ID, "error", err)
		}
	}
	return nil
}

// RetryFailedMessage re-attempts application of a previously failed message
// with the supplied payload, clearing the record on success. Source and
// sender are not re-validated: authentication already happened at first
// delivery, and the persisted record's provenance is trusted.
func (s *Service) RetryFailedMessage(ctx context.Context, messageID id.MessageID, payload []byte) error {
	ctx, span := s.tracer.Start(ctx, "relay.RetryFailedMessage",
		trace.WithAttributes(attribute.String("relay.message_id", messageID.String())))
	defer span.End()

	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	if _, err := s.ledger.Find(ctx, messageID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("%w: %s", models.ErrMessageNotFailed, messageID)
		}
		return fmt.Errorf("find failure record: %w", err)
	}

	if err := s.apply(ctx, payload); err != nil {
		s.recordFailure(ctx, messageID, err)
		return fmt.Errorf("retry apply: %w", err)
	}

	if err := s.ledger.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("clear failure record: %w", err)
	}
	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, messageID); err != nil {
			s.logger.WarnContext(ctx, "mark processed failed", "message_id", messageID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "message recovered", "message_id", messageID)
	if s.metrics != nil {
		s.metrics.MessagesRecovered.Inc()
	}
	return nil
}

// FailedMessages lists all failure records pending recovery.
func (s *Service) FailedMessages(ctx context.Context) ([]models.FailureRecord, error) {
	return s.ledger.List(ctx)
}

// apply unwraps the payload envelope and re-enters the unit's own dispatch
// table. The selector lookup is closed over provisioning-time registrations;
// the payload can never target anything outside the table.
func (s *Service) apply(ctx context.Context, payload []byte) error {
	env, err := codec.DecodePayload(payload)
	if err != nil {
		return err
	}
	return s.table.Dispatch(ctx, env.Selector, env.Args)
}

func (s *Service) recordFailure(ctx context.Context, messageID id.MessageID, cause error) {
	rec := models.FailureRecord{
		MessageID: messageID,
		Reason:    cause.Error(),
		State:     models.StateBasic,
		FailedAt:  s.now(),
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		// The ledger write is the recovery path's foundation; if it fails we
		// can only log loudly.
		s.logger.ErrorContext(ctx, "CRITICAL: failure ledger write failed",
			"message_id", messageID,
			"cause", cause,
			"error", err,
		)
		return
	}
	s.logger.WarnContext(ctx, "message failed",
		"message_id", messageID,
		"reason", cause.Error(),
	)
	if s.metrics != nil {
		s.metrics.MessagesFailed.Inc()
	}
}

func (s *Service) rejectDelivery(ctx context.Context, reason string, args ...any) {
	s.logger.WarnContext(ctx, "inbound delivery rejected", append([]any{"reason", reason}, args...)...)
	if s.metrics != nil {
		s.metrics.RejectedDeliveries.WithLabelValues(reason).Inc()
	}
}

// SetDestinationAllowed mutates the destination allowlist. Admin role
// required.
func (s *Service) SetDestinationAllowed(ctx context.Context, chain id.ChainID, allowed bool) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.allow.SetDestination(ctx, chain, allowed); err != nil {
		return fmt.Errorf("set destination allowlist: %w", err)
	}
	s.logger.InfoContext(ctx, "destination allowlist updated", "chain", chain, "allowed", allowed)
	return nil
}

// SetSourceAllowed mutates the source allowlist. Admin role required.
func (s *Service) SetSourceAllowed(ctx context.Context, chain id.ChainID, allowed bool) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.allow.SetSource(ctx, chain, allowed); err != nil {
		return fmt.Errorf("set source allowlist: %w", err)
	}
	s.logger.InfoContext(ctx, "source allowlist updated", "chain", chain, "allowed", allowed)
	return nil
}

// SetSenderAllowed mutates the per-chain sender allowlist. Admin role
// required.
func (s *Service) SetSenderAllowed(ctx context.Context, chain id.ChainID, sender id.Address, allowed bool) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.allow.SetSender(ctx, chain, sender, allowed); err != nil {
		return fmt.Errorf("set sender allowlist: %w", err)
	}
	s.logger.InfoContext(ctx, "sender allowlist updated", "chain", chain, "sender", sender, "allowed", allowed)
	return nil
}

// SetRouterIdentity rotates the registered router identity. Admin role
// required.
func (s *Service) SetRouterIdentity(ctx context.Context, identity string) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if identity == "" {
		return fmt.Errorf("set router identity: empty identity")
	}
	s.mu.Lock()
	s.routerIdentity = identity
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "router identity updated", "identity", identity)
	return nil
}

func (s *Service) requireAdmin(ctx context.Context) error {
	actor := requestcontext.Actor(ctx)
	if !s.roles.HasRole(ctx, accesscontrol.RoleAdmin, actor) {
		return fmt.Errorf("%w: actor %q lacks role %s", models.ErrUnauthorized, actor, accesscontrol.RoleAdmin)
	}
	return nil
}
