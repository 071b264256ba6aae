package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full configuration surface, resolved once at process start
// and passed explicitly into every collaborator. Every field has a safe
// default so a partially configured environment still yields a working
// handler (upstream auth failures then surface through the normal error
// paths instead of at boot).
type Config struct {
	ShopDomain      string `env:"SHOPIFY_STORE_DOMAIN" env-default:""`
	StorefrontToken string `env:"SHOPIFY_STOREFRONT_TOKEN" env-default:""`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY" env-default:""`
	OpenAIModel     string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	ParsingMode     string `env:"PARSING_MODE" env-default:"lenient"`
	LinkStyle       string `env:"LINK_STYLE" env-default:"absolute"`
	ParamPrefix     string `env:"PARAM_PREFIX" env-default:""`
	HTTPAddr        string `env:"HTTP_ADDR" env-default:":8080"`
}

// Load reads the configuration from the environment and validates the
// enumerated fields.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.ParsingMode {
	case "strict", "lenient":
	default:
		return fmt.Errorf("config: invalid PARSING_MODE %q (want strict or lenient)", c.ParsingMode)
	}
	switch c.LinkStyle {
	case "absolute", "relative":
	default:
		return fmt.Errorf("config: invalid LINK_STYLE %q (want absolute or relative)", c.LinkStyle)
	}
	return nil
}

// SecretGetter fetches a named secret value. Satisfied by paramstore.Client.
type SecretGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// OverlaySecrets fills the two API credentials from Parameter Store when a
// prefix is configured and the environment left them empty. Values already
// present in the environment win.
func (c *Config) OverlaySecrets(ctx context.Context, params SecretGetter) error {
	if c.ParamPrefix == "" {
		return nil
	}
	if params == nil {
		return errors.New("config: secret getter must not be nil")
	}
	prefix := strings.TrimRight(c.ParamPrefix, "/")

	if c.OpenAIAPIKey == "" {
		v, err := params.GetParameter(ctx, prefix+"/openai-api-key")
		if err != nil {
			return fmt.Errorf("config: load openai api key: %w", err)
		}
		c.OpenAIAPIKey = v
	}
	if c.StorefrontToken == "" {
		v, err := params.GetParameter(ctx, prefix+"/storefront-token")
		if err != nil {
			return fmt.Errorf("config: load storefront token: %w", err)
		}
		c.StorefrontToken = v
	}
	return nil
}
