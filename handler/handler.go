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

	"storefront-agent/internal/domain"
	"storefront-agent/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	// Error category labels surfaced to callers.
	labelOpenAIError = "OpenAI error"
	labelServerError = "Server error"
)

// ChatUseCase is the single pipeline behind the POST path.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatResponse struct {
	Reply    string           `json:"reply"`
	Products []domain.Product `json:"products"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Handler routes inbound API Gateway events: OPTIONS preflight, GET liveness,
// POST chat pipeline, 405 for anything else. Every response, including
// failures, carries the three CORS headers.
type Handler struct {
	chat ChatUseCase
}

func NewHandler(chat ChatUseCase) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat usecase must not be nil")
	}
	return &Handler{chat: chat}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	log := slog.With("correlation_id", corrID, "method", event.HTTPMethod)

	switch event.HTTPMethod {
	case http.MethodOptions:
		return textResponse(http.StatusNoContent, "", corrID), nil
	case http.MethodGet:
		return textResponse(http.StatusOK, "OK", corrID), nil
	case http.MethodPost:
	default:
		log.Info("method not allowed")
		return textResponse(http.StatusMethodNotAllowed, "Method not allowed", corrID), nil
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			log.Error("failed to decode base64 body", "err", err)
			return errorJSONResponse(labelServerError, err.Error(), corrID), nil
		}
		body = string(decoded)
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{Body: body})
	if err != nil {
		label, detail := classifyError(err)
		log.Error("chat pipeline failed", "category", label, "err", err)
		return errorJSONResponse(label, detail, corrID), nil
	}

	log.Info("chat completed", "products", len(out.Products), "reply_len", len(out.Reply))
	return jsonResponse(http.StatusOK, chatResponse{
		Reply:    out.Reply,
		Products: out.Products,
	}, corrID), nil
}

// classifyError distinguishes a completion-backend rejection, which keeps its
// raw upstream body as detail, from every other fault, which reports its
// string form.
func classifyError(err error) (label, detail string) {
	var uerr *usecase.Error
	if errors.As(err, &uerr) && uerr.Code == usecase.ErrorUpstreamOpenAI {
		detail = uerr.Detail
		if detail == "" {
			detail = err.Error()
		}
		return labelOpenAIError, detail
	}
	return labelServerError, err.Error()
}

// correlationID honors a caller-supplied header case-insensitively and
// generates one otherwise.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// baseHeaders returns a fresh header map with the CORS trio every response
// must carry.
func baseHeaders(corrID string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
		correlationHeader:              corrID,
	}
}

func textResponse(status int, body, corrID string) events.APIGatewayProxyResponse {
	headers := baseHeaders(corrID)
	if body != "" {
		headers["Content-Type"] = "text/plain"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

func jsonResponse(status int, payload any, corrID string) events.APIGatewayProxyResponse {
	headers := baseHeaders(corrID)
	headers["Content-Type"] = "application/json"
	body, err := json.Marshal(payload)
	if err != nil {
		// Marshalling plain structs of strings cannot realistically fail;
		// keep the CORS invariant even if it somehow does.
		slog.Error("failed to marshal response", "err", err)
		body = []byte(`{"error":"Server error","detail":"failed to encode response"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func errorJSONResponse(label, detail, corrID string) events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusInternalServerError, errorResponse{
		Error:  label,
		Detail: detail,
	}, corrID)
}
