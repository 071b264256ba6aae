// Command devserver serves the Lambda handler over plain HTTP for local
// development. It translates each http.Request into the same API Gateway
// event the deployed function receives, so behavior matches production.
package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront-agent/handler"
	"storefront-agent/internal/config"
	"storefront-agent/internal/integrations/openai"
	"storefront-agent/internal/integrations/shopify"
	"storefront-agent/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	searcher := shopify.NewClient(cfg.ShopDomain, cfg.StorefrontToken)
	llm := openai.NewClient(cfg.OpenAIAPIKey, openai.WithBaseURL(cfg.OpenAIBaseURL))
	svc, err := usecase.NewChatService(
		searcher,
		llm,
		cfg.OpenAIModel,
		usecase.ParseMode(cfg.ParsingMode),
		usecase.LinkStyle(cfg.LinkStyle),
	)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(svc)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.HandleFunc("/*", adapt(h))

	slog.Info("devserver listening", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// adapt bridges net/http and the Lambda handler contract.
func adapt(h *handler.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusInternalServerError)
			return
		}
		headers := make(map[string]string, len(r.Header))
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}

		resp, err := h.Handle(r.Context(), events.APIGatewayProxyRequest{
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Headers:    headers,
			Body:       string(body),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	}
}
