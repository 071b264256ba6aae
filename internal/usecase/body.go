package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront-agent/internal/domain"
)

// ParseMode selects how tolerant body normalization is of malformed JSON.
type ParseMode string

const (
	// ParseStrict fails the request when the body is not valid JSON.
	ParseStrict ParseMode = "strict"
	// ParseLenient coerces any unparsable body to an empty request.
	ParseLenient ParseMode = "lenient"
)

// LinkStyle selects how product references are rendered into the prompt.
type LinkStyle string

const (
	// LinkAbsolute renders each match with its direct store URL.
	LinkAbsolute LinkStyle = "absolute"
	// LinkRelative renders in-app markdown links (/products/{handle}) and
	// instructs the model not to emit raw URLs itself.
	LinkRelative LinkStyle = "relative"
)

// maxMessageChars bounds both the search query and the prompt size.
const maxMessageChars = 2000

// rawChatRequest defers message decoding so non-string values can be coerced
// instead of failing the whole decode.
type rawChatRequest struct {
	Message  json.RawMessage      `json:"message"`
	History  []domain.ChatMessage `json:"history"`
	Policies map[string]string    `json:"policies"`
}

// normalizeBody produces a ChatRequest from a raw request body. In strict
// mode a parse failure is fatal for the request; in lenient mode it yields
// an empty request. History and Policies are always non-nil on return and
// Message is truncated to maxMessageChars.
func normalizeBody(body string, mode ParseMode) (domain.ChatRequest, error) {
	var raw rawChatRequest
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		if mode == ParseStrict {
			return domain.ChatRequest{}, fmt.Errorf("parse body: %w", err)
		}
		raw = rawChatRequest{}
	}

	req := domain.ChatRequest{
		Message:  truncateMessage(coerceMessage(raw.Message)),
		History:  raw.History,
		Policies: raw.Policies,
	}
	if req.History == nil {
		req.History = []domain.ChatMessage{}
	}
	if req.Policies == nil {
		req.Policies = map[string]string{}
	}
	return req, nil
}

// coerceMessage turns whatever JSON value was supplied for "message" into a
// string: absent and null become empty, a JSON string is unquoted, and any
// other scalar keeps its literal rendering.
func coerceMessage(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

func truncateMessage(s string) string {
	runes := []rune(s)
	if len(runes) <= maxMessageChars {
		return s
	}
	return string(runes[:maxMessageChars])
}
