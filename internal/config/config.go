// Package config loads the YAML configuration shared by the chat commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/services"
	"gopkg.in/yaml.v3"
)

const (
	dirName  = "fostercare-chat"
	fileName = "config.yaml"
)

// BackendConfig builds the transport that carries user turns to the assistant.
type BackendConfig interface {
	Name() string
	Transport(logger *slog.Logger) (chatview.Transport, error)
}

// Config is the root of the configuration file.
type Config struct {
	Port       string        `yaml:"port"`
	LogLevel   string        `yaml:"logLevel"`
	SessionTTL time.Duration `yaml:"sessionTTL"`
	Chat       ChatConfig    `yaml:"chat"`
	Backend    BackendConfig `yaml:"backend"`
}

// ChatConfig tunes every chat view created from this configuration.
type ChatConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	ChunkSize int           `yaml:"chunkSize"`
	Greeting  string        `yaml:"greeting"`
}

// BaseLLMConfig contains the common fields for the direct LLM providers.
type BaseLLMConfig struct {
	Provider     string                 `yaml:"provider"`
	Model        string                 `yaml:"model"`
	SystemPrompt string                 `yaml:"systemPrompt"`
	Parameters   services.LLMParameters `yaml:"parameters"`
}

type endpointConfig struct {
	URL string `yaml:"url"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	BaseURL       string `yaml:"baseURL"`
}

type anthropicConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	BaseURL       string `yaml:"baseURL"`
	MaxTokens     int    `yaml:"maxTokens"`
}

// Default returns the configuration used when no file exists: the web server on port 3000
// talking to the policy assistant API on localhost:8000.
func Default() Config {
	return Config{
		Port:       "3000",
		LogLevel:   "info",
		SessionTTL: 24 * time.Hour,
		Chat: ChatConfig{
			Timeout:   chatview.DefaultTimeout,
			ChunkSize: chatview.DefaultChunkSize,
		},
		Backend: &endpointConfig{URL: services.DefaultEndpointURL},
	}
}

// DefaultPath returns the configuration file location under the user config directory.
func DefaultPath() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting user config dir: %w", err)
	}
	return filepath.Join(cfgDir, dirName, fileName), nil
}

// Load reads the configuration at path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	cfgFile, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer cfgFile.Close()

	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error decoding config file: %w", err)
	}

	return cfg, nil
}

// UnmarshalYAML decodes the configuration, resolving the backend section by its provider.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	rawConfig := struct {
		Port       string         `yaml:"port"`
		LogLevel   string         `yaml:"logLevel"`
		SessionTTL time.Duration  `yaml:"sessionTTL"`
		Chat       ChatConfig     `yaml:"chat"`
		Backend    map[string]any `yaml:"backend"`
	}{
		Port:       c.Port,
		LogLevel:   c.LogLevel,
		SessionTTL: c.SessionTTL,
		Chat:       c.Chat,
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	c.Port = rawConfig.Port
	c.LogLevel = rawConfig.LogLevel
	c.SessionTTL = rawConfig.SessionTTL
	c.Chat = rawConfig.Chat

	if rawConfig.Backend == nil {
		return nil
	}

	provider, ok := rawConfig.Backend["provider"].(string)
	if !ok {
		provider = "endpoint"
	}

	backendRawYAML, err := yaml.Marshal(rawConfig.Backend)
	if err != nil {
		return err
	}

	var backend BackendConfig
	switch provider {
	case "endpoint":
		backend = &endpointConfig{}
	case "ollama":
		backend = &ollamaConfig{}
	case "openai":
		backend = &openAIConfig{}
	case "anthropic":
		backend = &anthropicConfig{}
	default:
		return fmt.Errorf("unknown backend provider: %s", provider)
	}

	if err := yaml.Unmarshal(backendRawYAML, backend); err != nil {
		return err
	}

	c.Backend = backend

	return nil
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ViewOptions returns the chat view options derived from the chat section.
func (c Config) ViewOptions(logger *slog.Logger) []chatview.Option {
	return []chatview.Option{
		chatview.WithTimeout(c.Chat.Timeout),
		chatview.WithChunkSize(c.Chat.ChunkSize),
		chatview.WithGreeting(c.Chat.Greeting),
		chatview.WithLogger(logger),
	}
}

// ProxyTarget returns the origin of the policy assistant API, if the endpoint provider is used.
func (c Config) ProxyTarget() (*url.URL, bool) {
	ep, ok := c.Backend.(*endpointConfig)
	if !ok {
		return nil, false
	}
	u, err := url.Parse(ep.URL)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, true
}

func (endpointConfig) Name() string { return "endpoint" }

func (e endpointConfig) Transport(logger *slog.Logger) (chatview.Transport, error) {
	if _, err := url.Parse(e.URL); err != nil {
		return nil, fmt.Errorf("invalid endpoint url: %w", err)
	}
	return services.NewEndpoint(e.URL, nil, logger), nil
}

func (ollamaConfig) Name() string { return "ollama" }

func (o ollamaConfig) Transport(logger *slog.Logger) (chatview.Transport, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	host := o.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	return services.NewOllama(host, o.Model, o.SystemPrompt, o.Parameters, logger)
}

func (openAIConfig) Name() string { return "openai" }

func (o openAIConfig) Transport(logger *slog.Logger) (chatview.Transport, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return services.NewOpenAI(apiKey, o.BaseURL, o.Model, o.SystemPrompt, o.Parameters, logger), nil
}

func (anthropicConfig) Name() string { return "anthropic" }

func (a anthropicConfig) Transport(logger *slog.Logger) (chatview.Transport, error) {
	if a.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return services.NewAnthropic(apiKey, a.BaseURL, a.Model, a.SystemPrompt, a.MaxTokens, logger), nil
}
