package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Store  StoreConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Store: store}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Default model names used when a request does not pick one.
const (
	DefaultOpenAIModel = "gpt-4-turbo"
	DefaultGeminiModel = "gemini-1.5-flash"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	OpenAI      OpenAIConfig
	Gemini      GeminiConfig
	Ark         ArkConfig
	Temperature *float64
	MaxTokens   *int
}

// OpenAIConfig holds credentials for the OpenAI chat-completion API.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// GeminiConfig holds credentials for the Google Gemini API.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// ArkConfig holds credentials for the Volcengine Ark endpoint.
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了 OpenAI 密钥。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Enabled 表示是否提供了 Gemini 密钥。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// Enabled 表示是否提供了必需的 Ark 密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewOpenAIClient 使用配置创建 OpenAI 客户端。
func (c AIConfig) NewOpenAIClient() (*openai.LLM, error) {
	if !c.OpenAI.Enabled() {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	opts := []openai.Option{
		openai.WithToken(c.OpenAI.APIKey),
		openai.WithModel(c.OpenAI.Model),
	}
	if c.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.OpenAI.BaseURL))
	}
	return openai.New(opts...)
}

// NewGeminiClient 使用配置创建 Gemini 客户端。
func (c AIConfig) NewGeminiClient(ctx context.Context) (*googleai.GoogleAI, error) {
	if !c.Gemini.Enabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	return googleai.New(ctx,
		googleai.WithAPIKey(c.Gemini.APIKey),
		googleai.WithDefaultModel(c.Gemini.Model),
	)
}

// NewArkChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewArkChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Ark.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.Ark.BaseURL,
		Region:      c.Ark.Region,
		APIKey:      c.Ark.APIKey,
		AccessKey:   c.Ark.AccessKey,
		SecretKey:   c.Ark.SecretKey,
		Model:       c.Ark.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens != nil && *maxTokens < 1 {
		return AIConfig{}, fmt.Errorf("invalid AI_MAX_TOKENS value %d: must be positive", *maxTokens)
	}

	return AIConfig{
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
			Model:   getEnvOrDefault("OPENAI_MODEL", DefaultOpenAIModel),
		},
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:  getEnvOrDefault("GEMINI_MODEL", DefaultGeminiModel),
		},
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// Store drivers understood by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// StoreConfig 描述持久化存储配置。
type StoreConfig struct {
	Driver      string
	URL         string
	SQLitePath  string
	AutoMigrate bool
}

// Configured 表示所选驱动是否具备连接所需的参数。
func (c StoreConfig) Configured() bool {
	switch c.Driver {
	case DriverPostgres:
		return c.URL != ""
	case DriverSQLite:
		return c.SQLitePath != ""
	default:
		return true
	}
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverPostgres))
	switch driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value: %q", driver)
	}

	url := strings.TrimSpace(os.Getenv("SUPABASE_DB_URL"))
	if url == "" {
		url = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	autoMigrate, err := parseBoolEnv("STORE_AUTO_MIGRATE", driver == DriverSQLite)
	if err != nil {
		return StoreConfig{}, err
	}

	return StoreConfig{
		Driver:      driver,
		URL:         url,
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "helix.db"),
		AutoMigrate: autoMigrate,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
