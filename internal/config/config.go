package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Provider names the LLM backend used by the chat service.
type Provider string

const (
	ProviderNone    Provider = ""
	ProviderArk     Provider = "ark"
	ProviderMistral Provider = "mistral"
)

// Config aggregates the service configuration.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	LogLevel string
}

// Load reads the service configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, LogLevel: getEnvOrDefault("LOG_LEVEL", "info")}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	if strings.Contains(port, ":") {
		// ":8000" and "127.0.0.1:8000" are passed through as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the language model backends and the conversation limits
// applied to every request.
type AIConfig struct {
	Provider Provider

	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string

	MistralAPIKey  string
	MistralBaseURL string
	MistralModel   string

	MaxTokens    int
	HistoryLimit int
}

// ArkEnabled reports whether Ark credentials and a model are present.
func (c AIConfig) ArkEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// MistralEnabled reports whether a Mistral key is present.
func (c AIConfig) MistralEnabled() bool {
	return c.MistralAPIKey != "" && c.MistralModel != ""
}

// Enabled reports whether the selected provider can be constructed.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkEnabled()
	case ProviderMistral:
		return c.MistralEnabled()
	default:
		return false
	}
}

// NewChatModel builds an Ark chat model. Sampling parameters are supplied per
// call, so none are fixed here.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	maxTokens := c.MaxTokens
	cfg := &ark.ChatModelConfig{
		BaseURL:   c.ArkBaseURL,
		Region:    c.ArkRegion,
		APIKey:    c.ArkAPIKey,
		AccessKey: c.ArkAccessKey,
		SecretKey: c.ArkSecretKey,
		Model:     c.ArkModel,
		MaxTokens: &maxTokens,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	maxTokens, err := parseIntEnv("CHAT_MAX_TOKENS", 300)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit, err := parseIntEnv("CHAT_HISTORY_LIMIT", 10)
	if err != nil {
		return AIConfig{}, err
	}
	if historyLimit < 0 {
		historyLimit = 0
	}

	cfg := AIConfig{
		ArkAPIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:       strings.TrimSpace(os.Getenv("Model")),
		ArkBaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		MistralAPIKey:  strings.TrimSpace(os.Getenv("MISTRAL_API_KEY")),
		MistralBaseURL: getEnvOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		MistralModel:   getEnvOrDefault("MISTRAL_MODEL", "open-mistral-7b"),
		MaxTokens:      maxTokens,
		HistoryLimit:   historyLimit,
	}

	switch raw := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))); raw {
	case "":
		cfg.Provider = detectProvider(cfg)
	case string(ProviderArk), string(ProviderMistral):
		cfg.Provider = Provider(raw)
	default:
		return AIConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", raw)
	}

	return cfg, nil
}

func detectProvider(cfg AIConfig) Provider {
	switch {
	case cfg.MistralEnabled():
		return ProviderMistral
	case cfg.ArkEnabled():
		return ProviderArk
	default:
		return ProviderNone
	}
}

// ClientConfig describes how the REPL reaches the chat service.
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	LogLevel string
}

// LoadClient reads the client configuration from environment variables.
// A zero Timeout means requests wait until the service answers.
func LoadClient() (*ClientConfig, error) {
	var timeout time.Duration
	if raw := strings.TrimSpace(os.Getenv("CHAT_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_TIMEOUT value %q: %w", raw, err)
		}
		timeout = parsed
	}

	return &ClientConfig{
		BaseURL:  getEnvOrDefault("CHAT_API_URL", "http://localhost:8000"),
		Timeout:  timeout,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "warn"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
