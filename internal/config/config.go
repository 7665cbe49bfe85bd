package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every section of the service configuration.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Diffusion DiffusionConfig
	Drive     DriveConfig
	Chat      ChatConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	diffusion, err := loadDiffusionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        loadAIConfig(),
		Diffusion: diffusion,
		Drive:     loadDriveConfig(),
		Chat:      loadChatConfig(),
	}, nil
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
		// Allow passing ":8000" or "127.0.0.1:8000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig carries the Gemini credentials and model names.
type AIConfig struct {
	APIKey      string
	TextModel   string
	VisionModel string
}

// Enabled reports whether the Gemini integration can start.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadAIConfig() AIConfig {
	cfg := AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		TextModel:   strings.TrimSpace(os.Getenv("GEMINI_TEXT_MODEL")),
		VisionModel: strings.TrimSpace(os.Getenv("GEMINI_VISION_MODEL")),
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = "gemini-2.0-flash-exp"
	}
	return cfg
}

// DiffusionConfig points at the Stable Diffusion webui-compatible API.
type DiffusionConfig struct {
	BaseURL string
	// MaxConcurrent bounds simultaneous pipeline invocations. The
	// default of 1 serializes access since the pipeline is not
	// reentrant-safe.
	MaxConcurrent int
}

// Enabled reports whether an image backend is configured.
func (c DiffusionConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadDiffusionConfig() (DiffusionConfig, error) {
	cfg := DiffusionConfig{
		BaseURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("SD_API_URL")), "/"),
		MaxConcurrent: 1,
	}

	if raw := strings.TrimSpace(os.Getenv("SD_MAX_CONCURRENT")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return DiffusionConfig{}, fmt.Errorf("invalid SD_MAX_CONCURRENT value: %q", raw)
		}
		cfg.MaxConcurrent = parsed
	}

	return cfg, nil
}

// DriveConfig locates the OAuth client-secret descriptor and the token
// cache written by the credential store.
type DriveConfig struct {
	CredentialsFile string
	TokenFile       string
}

// Enabled reports whether the Drive integration can start. The client
// secret descriptor is provisioned out of band, so its presence on
// disk is the switch.
func (c DriveConfig) Enabled() bool {
	if c.CredentialsFile == "" {
		return false
	}
	_, err := os.Stat(c.CredentialsFile)
	return err == nil
}

func loadDriveConfig() DriveConfig {
	cfg := DriveConfig{
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")),
		TokenFile:       strings.TrimSpace(os.Getenv("GOOGLE_TOKEN_FILE")),
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = "credentials.json"
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = "token.json"
	}
	return cfg
}

// ChatConfig selects the chat history backend. An empty path keeps
// history in memory for the process lifetime.
type ChatConfig struct {
	DBPath string
}

func loadChatConfig() ChatConfig {
	return ChatConfig{DBPath: strings.TrimSpace(os.Getenv("CHAT_DB_PATH"))}
}
