package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	vals  map[string]string
	err   error
	calls []string
}

func (f *fakeSecrets) GetParameter(_ context.Context, name string) (string, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.vals[name]
	if !ok {
		return "", fmt.Errorf("param not found: %s", name)
	}
	return v, nil
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	require.Equal(t, "lenient", cfg.ParsingMode)
	require.Equal(t, "absolute", cfg.LinkStyle)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Empty(t, cfg.ShopDomain)
	require.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SHOPIFY_STORE_DOMAIN", "example.myshopify.com")
	t.Setenv("SHOPIFY_STOREFRONT_TOKEN", "shpat-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("PARSING_MODE", "strict")
	t.Setenv("LINK_STYLE", "relative")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "example.myshopify.com", cfg.ShopDomain)
	require.Equal(t, "shpat-test", cfg.StorefrontToken)
	require.Equal(t, "gpt-4o", cfg.OpenAIModel)
	require.Equal(t, "strict", cfg.ParsingMode)
	require.Equal(t, "relative", cfg.LinkStyle)
}

func TestLoad_RejectsUnknownEnums(t *testing.T) {
	t.Setenv("PARSING_MODE", "chaotic")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PARSING_MODE")

	t.Setenv("PARSING_MODE", "strict")
	t.Setenv("LINK_STYLE", "inline")
	_, err = Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "LINK_STYLE")
}

func TestOverlaySecrets_NoPrefixIsNoop(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.OverlaySecrets(context.Background(), nil))
}

func TestOverlaySecrets_FillsEmptySecrets(t *testing.T) {
	secrets := &fakeSecrets{vals: map[string]string{
		"/storefront-agent/openai-api-key":   "sk-from-ssm",
		"/storefront-agent/storefront-token": "shpat-from-ssm",
	}}
	cfg := Config{ParamPrefix: "/storefront-agent/"}

	require.NoError(t, cfg.OverlaySecrets(context.Background(), secrets))
	require.Equal(t, "sk-from-ssm", cfg.OpenAIAPIKey)
	require.Equal(t, "shpat-from-ssm", cfg.StorefrontToken)
}

func TestOverlaySecrets_EnvironmentWins(t *testing.T) {
	secrets := &fakeSecrets{vals: map[string]string{
		"/storefront-agent/storefront-token": "shpat-from-ssm",
	}}
	cfg := Config{
		ParamPrefix:     "/storefront-agent",
		OpenAIAPIKey:    "sk-from-env",
		StorefrontToken: "",
	}

	require.NoError(t, cfg.OverlaySecrets(context.Background(), secrets))
	require.Equal(t, "sk-from-env", cfg.OpenAIAPIKey)
	require.Equal(t, "shpat-from-ssm", cfg.StorefrontToken)
	require.Equal(t, []string{"/storefront-agent/storefront-token"}, secrets.calls)
}

func TestOverlaySecrets_PropagatesFailure(t *testing.T) {
	secrets := &fakeSecrets{err: errors.New("ssm unavailable")}
	cfg := Config{ParamPrefix: "/storefront-agent"}

	err := cfg.OverlaySecrets(context.Background(), secrets)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ssm unavailable")
}

func TestOverlaySecrets_NilGetterWithPrefix(t *testing.T) {
	cfg := Config{ParamPrefix: "/storefront-agent"}
	require.Error(t, cfg.OverlaySecrets(context.Background(), nil))
}
