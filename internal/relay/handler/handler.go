// Package handler is the thin HTTP layer over the relay service. It decodes
// requests, delegates, and translates domain errors into JSON envelopes;
// business logic stays in the service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
	"relaygate/pkg/requestcontext"
)

// Service is the relay surface this handler exposes.
type Service interface {
	Send(ctx context.Context, req models.SendRequest) (id.MessageID, error)
	RetryFailedMessage(ctx context.Context, messageID id.MessageID, payload []byte) error
	FailedMessages(ctx context.Context) ([]models.FailureRecord, error)
	SetDestinationAllowed(ctx context.Context, chain id.ChainID, allowed bool) error
	SetSourceAllowed(ctx context.Context, chain id.ChainID, allowed bool) error
	SetSenderAllowed(ctx context.Context, chain id.ChainID, sender id.Address, allowed bool) error
	SetRouterIdentity(ctx context.Context, identity string) error
}

// Handler wires relay endpoints to the relay service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a relay handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the caller-facing endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/v1/messages", h.handleSend)
}

// RegisterAdmin mounts the operator endpoints. Mount behind authentication;
// the service additionally enforces the admin role on every mutation.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/v1/messages/failed", h.handleListFailed)
	r.Post("/v1/messages/{id}/retry", h.handleRetry)
	r.Put("/v1/admin/allowlist/destinations/{chain}", h.handleSetDestination)
	r.Put("/v1/admin/allowlist/sources/{chain}", h.handleSetSource)
	r.Put("/v1/admin/allowlist/senders/{chain}/{sender}", h.handleSetSender)
	r.Put("/v1/admin/router", h.handleSetRouter)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorCode(w, http.StatusBadRequest, err.Error())
		return
	}

	messageID, err := h.service.Send(ctx, req.toDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "send failed",
			"request_id", requestcontext.RequestID(ctx),
			"destination_chain", req.DestinationChain,
			"error", err,
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, sendResponse{MessageID: messageID.String()})
}

func (h *Handler) handleListFailed(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.FailedMessages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]failureRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, toFailureRecord(rec))
	}
	writeJSON(w, http.StatusOK, failedListResponse{Messages: out})
}

func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messageID := id.MessageID(chi.URLParam(r, "id"))

	var req retryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	if err := h.service.RetryFailedMessage(ctx, messageID, req.Payload); err != nil {
		h.logger.WarnContext(ctx, "retry failed",
			"request_id", requestcontext.RequestID(ctx),
			"message_id", messageID,
			"error", err,
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recovered"})
}

func (h *Handler) handleSetDestination(w http.ResponseWriter, r *http.Request) {
	h.setChainEntry(w, r, h.service.SetDestinationAllowed)
}

func (h *Handler) handleSetSource(w http.ResponseWriter, r *http.Request) {
	h.setChainEntry(w, r, h.service.SetSourceAllowed)
}

func (h *Handler) setChainEntry(w http.ResponseWriter, r *http.Request,
	set func(context.Context, id.ChainID, bool) error) {
	chain, err := id.ParseChainID(chi.URLParam(r, "chain"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_chain_id")
		return
	}

	var req allowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	if err := set(r.Context(), chain, req.Allowed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": req.Allowed})
}

func (h *Handler) handleSetSender(w http.ResponseWriter, r *http.Request) {
	chain, err := id.ParseChainID(chi.URLParam(r, "chain"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_chain_id")
		return
	}
	sender := id.Address(chi.URLParam(r, "sender"))
	if sender.IsNil() {
		writeErrorCode(w, http.StatusBadRequest, "invalid_sender")
		return
	}

	var req allowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	if err := h.service.SetSenderAllowed(r.Context(), chain, sender, req.Allowed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": req.Allowed})
}

func (h *Handler) handleSetRouter(w http.ResponseWriter, r *http.Request) {
	var req routerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_request_body")
		return
	}
	if req.Identity == "" {
		writeErrorCode(w, http.StatusBadRequest, "missing_identity")
		return
	}

	if err := h.service.SetRouterIdentity(r.Context(), req.Identity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"identity": req.Identity})
}

// writeError centralizes domain error translation to HTTP responses so every
// endpoint speaks the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		status, code = http.StatusForbidden, "access_denied"
	case errors.Is(err, models.ErrDestinationNotAllowlisted):
		status, code = http.StatusForbidden, "destination_chain_not_allowlisted"
	case errors.Is(err, models.ErrInsufficientBalance):
		status, code = http.StatusConflict, "insufficient_balance"
	case errors.Is(err, models.ErrMessageNotFailed):
		status, code = http.StatusNotFound, "message_not_failed"
	case errors.Is(err, models.ErrMalformedPayload):
		status, code = http.StatusBadRequest, "malformed_payload"
	}
	writeErrorCode(w, status, code)
}

func writeErrorCode(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
