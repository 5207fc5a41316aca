package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"tienda-chat/internal/domain"
)

// EmptyReplyPlaceholder replaces a first candidate that carries no text.
const EmptyReplyPlaceholder = "Respuesta vacía"

type Completer interface {
	Complete(ctx context.Context, model string, turns []domain.Turn) ([]domain.Candidate, error)
}

type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, correlationID string, outcome domain.Outcome, turnCount, replyLength int, latency time.Duration) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Provider is the process-wide completion provider state. It is decided once
// at startup and never re-initialised: either a completer with a model, or
// unconfigured with the reason it could not be built.
type Provider struct {
	completer Completer
	model     string
	reason    error
}

// ConfiguredProvider returns a ready provider state.
func ConfiguredProvider(c Completer, model string) (Provider, error) {
	if c == nil {
		return Provider{}, errors.New("usecase: completer must not be nil")
	}
	if model == "" {
		return Provider{}, errors.New("usecase: model must not be empty")
	}
	return Provider{completer: c, model: model}, nil
}

// UnconfiguredProvider returns the state used when the credential was missing
// at startup. Every relay call will fail with a configuration error.
func UnconfiguredProvider(reason error) Provider {
	if reason == nil {
		reason = errors.New("provider not configured")
	}
	return Provider{reason: reason}
}

func (p Provider) Configured() bool { return p.completer != nil }

func (p Provider) Model() string { return p.model }

type RelayInput struct {
	// Payload is the raw JSON request body.
	Payload       []byte
	CorrelationID string
}

type RelayOutput struct {
	Reply string
}

// RelayService validates conversation turns and forwards them to the provider.
type RelayService struct {
	provider Provider
	recorder ExchangeRecorder
	logger   *slog.Logger
}

type Option func(*RelayService)

// WithRecorder records an exchange for every relay call.
func WithRecorder(r ExchangeRecorder) Option {
	return func(s *RelayService) {
		s.recorder = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *RelayService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewRelayService(p Provider, opts ...Option) *RelayService {
	s := &RelayService{provider: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RelayService) Relay(ctx context.Context, in RelayInput) (out RelayOutput, err error) {
	start := time.Now()
	log := s.logger.With("correlation_id", in.CorrelationID)
	turnCount := 0
	defer func() {
		s.record(ctx, log, in.CorrelationID, outcomeOf(err), turnCount, len(out.Reply), time.Since(start))
	}()

	if !s.provider.Configured() {
		log.Error("provider client is not initialized", "err", s.provider.reason)
		return RelayOutput{}, configurationError(s.provider.reason)
	}

	turns, err := decodeTurns(in.Payload)
	if err != nil {
		log.Error("invalid or missing messages in request body", "err", err)
		return RelayOutput{}, err
	}
	turnCount = len(turns)
	log.Info("relay request received", "message_count", len(turns), "roles", roles(turns))

	candidates, err := s.complete(ctx, turns)
	if err != nil {
		log.Error("provider call failed", "err", err, "duration", time.Since(start))
		return RelayOutput{}, classifyProviderError(err)
	}
	log.Info("provider response received", "candidates", len(candidates), "duration", time.Since(start))

	if len(candidates) == 0 {
		log.Error("provider response did not contain any choices")
		return RelayOutput{}, providerError("no_candidates", msgNoChoices, "", nil)
	}

	reply := candidates[0].Content
	if reply == "" {
		log.Warn("provider returned empty content; using placeholder")
		reply = EmptyReplyPlaceholder
	}
	return RelayOutput{Reply: reply}, nil
}

// complete calls the provider and turns a panic into an error.
func (s *RelayService) complete(ctx context.Context, turns []domain.Turn) (candidates []domain.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return s.provider.completer.Complete(ctx, s.provider.model, turns)
}

func (s *RelayService) record(ctx context.Context, log *slog.Logger, correlationID string, outcome domain.Outcome, turnCount, replyLength int, latency time.Duration) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordExchange(ctx, correlationID, outcome, turnCount, replyLength, latency); err != nil {
		log.Warn("failed to record exchange", "err", err)
	}
}

type relayRequest struct {
	Messages json.RawMessage `json:"messages"`
}

// decodeTurns parses {"messages": [...]} and validates every turn. Nothing is
// returned unless the whole sequence is valid.
func decodeTurns(payload []byte) ([]domain.Turn, error) {
	var req relayRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, validationError("malformed_body", fmt.Errorf("decode body: %w", err))
	}
	raw := bytes.TrimSpace(req.Messages)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, validationError("missing_messages", nil)
	}
	if raw[0] != '[' {
		return nil, validationError("messages_not_array", nil)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, validationError("invalid_turn", fmt.Errorf("decode messages: %w", err))
	}
	if err := domain.ValidateTurns(turns); err != nil {
		return nil, validationError("invalid_turn", err)
	}
	return turns, nil
}

func classifyProviderError(err error) *Error {
	var pe *panicError
	if errors.As(err, &pe) {
		return providerError("provider_panic", msgRequestFailed, "unexpected provider failure", err)
	}
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatusCode()
		reason := "provider_status_error"
		if status == http.StatusTooManyRequests {
			reason = "provider_rate_limited"
		}
		return providerError(reason, msgRequestFailed, fmt.Sprintf("provider returned status %d", status), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return providerError("provider_timeout", msgRequestFailed, "provider request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return providerError("request_canceled", msgRequestFailed, "request canceled", err)
	}
	return providerError("provider_request_failed", msgRequestFailed, "provider request failed", err)
}

func outcomeOf(err error) domain.Outcome {
	if err == nil {
		return domain.OutcomeReplied
	}
	var ue *Error
	if errors.As(err, &ue) {
		switch ue.Code {
		case ErrorValidation:
			return domain.OutcomeInvalid
		case ErrorConfiguration:
			return domain.OutcomeUnconfigured
		}
	}
	return domain.OutcomeProviderError
}

func roles(turns []domain.Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = string(t.Role)
	}
	return out
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("usecase: provider panicked: %v", e.value)
}
