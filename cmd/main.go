package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"storefront-agent/handler"
	"storefront-agent/internal/config"
	"storefront-agent/internal/integrations/openai"
	"storefront-agent/internal/integrations/paramstore"
	"storefront-agent/internal/integrations/shopify"
	"storefront-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// ---- Optional Parameter Store secret overlay ----
	if cfg.ParamPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		if err := cfg.OverlaySecrets(ctx, ps); err != nil {
			slog.Error("failed to overlay secrets", "err", err)
			os.Exit(1)
		}
	}

	// ---- Handler ----
	h, err := buildHandler(cfg)
	if err != nil {
		slog.Error("failed to build handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func buildHandler(cfg config.Config) (*handler.Handler, error) {
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
		return nil, err
	}
	return handler.NewHandler(svc)
}
