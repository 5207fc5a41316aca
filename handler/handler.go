package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"tienda-chat/internal/usecase"
)

const (
	// RelayPath is the single relay endpoint.
	RelayPath         = "/api/chat"
	correlationHeader = "X-Correlation-Id"
)

type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

type relayResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler adapts the relay service to API Gateway proxy events and, through
// NewRouter, to plain HTTP.
type Handler struct {
	relay  Relayer
	logger *slog.Logger
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(r Relayer, opts ...Option) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	h := &Handler{relay: r, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle serves one API Gateway proxy request.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)

	// Only POST reaches the relay, configured or not.
	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, corrID, errorResponse{Error: "method not allowed"}), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			h.logger.Warn("failed to decode base64 body", "err", err, "correlation_id", corrID)
			decoded = nil
		}
		body = decoded
	}

	status, payload := h.serve(ctx, corrID, body)
	return jsonResponse(status, corrID, payload), nil
}

func (h *Handler) serve(ctx context.Context, corrID string, body []byte) (int, any) {
	out, err := h.relay.Relay(ctx, usecase.RelayInput{Payload: body, CorrelationID: corrID})
	if err != nil {
		status, resp := errorPayload(err)
		h.logger.Error("relay request failed", "err", err, "status", status, "correlation_id", corrID)
		return status, resp
	}
	return http.StatusOK, relayResponse{Reply: out.Reply}
}

func errorPayload(err error) (int, errorResponse) {
	var relayErr *usecase.Error
	if errors.As(err, &relayErr) {
		return statusFor(relayErr.Code), errorResponse{Error: relayErr.Message, Details: relayErr.Details}
	}
	return http.StatusInternalServerError, errorResponse{Error: "An unknown error occurred during your request."}
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorValidation:
		return http.StatusBadRequest
	case usecase.ErrorConfiguration, usecase.ErrorProvider:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func jsonResponse(status int, corrID string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"An unknown error occurred during your request."}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}
