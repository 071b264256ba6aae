package usecase

import (
	"context"
	"errors"
	"log/slog"

	"storefront-agent/internal/domain"
)

const defaultModel = "gpt-4o-mini"

// ProductSearcher queries the storefront catalog for matches against free
// text. Implementations must return at most five products in backend
// relevance order.
type ProductSearcher interface {
	Search(ctx context.Context, query string) ([]domain.Product, error)
}

// LLMClient sends a message list to the completion backend. An empty reply
// with a nil error means the backend answered but produced no usable
// content; callers treat that as a degraded success.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// upstreamBodyCarrier is satisfied by errors that retained the verbatim
// response body of a rejected upstream call.
type upstreamBodyCarrier interface {
	UpstreamBody() string
}

// ChatService runs the request pipeline: normalize body, match products,
// assemble the prompt, invoke the completion backend. It holds no mutable
// state and is safe for concurrent use.
type ChatService struct {
	searcher ProductSearcher
	llm      LLMClient
	model    string
	mode     ParseMode
	links    LinkStyle
}

type ChatInput struct {
	Body string
}

type ChatOutput struct {
	Reply    string
	Products []domain.Product
}

func NewChatService(searcher ProductSearcher, llm LLMClient, model string, mode ParseMode, links LinkStyle) (*ChatService, error) {
	if searcher == nil {
		return nil, errors.New("usecase: product searcher must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if model == "" {
		model = defaultModel
	}
	switch mode {
	case "":
		mode = ParseLenient
	case ParseStrict, ParseLenient:
	default:
		return nil, errors.New("usecase: unknown parse mode " + string(mode))
	}
	switch links {
	case "":
		links = LinkAbsolute
	case LinkAbsolute, LinkRelative:
	default:
		return nil, errors.New("usecase: unknown link style " + string(links))
	}
	return &ChatService{
		searcher: searcher,
		llm:      llm,
		model:    model,
		mode:     mode,
		links:    links,
	}, nil
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	req, err := normalizeBody(in.Body, s.mode)
	if err != nil {
		return ChatOutput{}, newError(ErrorInvalidInput, "malformed_body", err)
	}

	products := []domain.Product{}
	if req.Message != "" {
		matched, err := s.searcher.Search(ctx, req.Message)
		if err != nil {
			return ChatOutput{}, newError(ErrorUpstreamSearch, "product_search_error", err)
		}
		if matched != nil {
			products = matched
		}
	}

	messages := buildPromptMessages(req, products, s.links)

	reply, err := s.llm.Chat(ctx, s.model, messages)
	if err != nil {
		var carrier upstreamBodyCarrier
		if errors.As(err, &carrier) {
			return ChatOutput{}, &Error{
				Code:   ErrorUpstreamOpenAI,
				Reason: "openai_http_error",
				Detail: carrier.UpstreamBody(),
				Err:    err,
			}
		}
		return ChatOutput{}, newError(ErrorInternal, "openai_transport_error", err)
	}
	if reply == "" {
		slog.Debug("completion returned no content, using fallback reply")
		reply = fallbackReply
	}

	return ChatOutput{Reply: reply, Products: products}, nil
}
