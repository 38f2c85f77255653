package app

import (
	"errors"
	"fmt"

	"github.com/vk/cwspublish/internal/webstore"
)

// Commands accepted by Config.Command.
const (
	CommandUpload  = "upload"
	CommandPublish = "publish"
)

// Config holds everything one workflow run needs.
type Config struct {
	Command string

	ClientID     string
	ClientSecret string
	RefreshToken string

	Source      string // path to the extension zip
	ExtensionID string
	Target      webstore.Target

	LogFormat string
	LogLevel  string

	// Empty values select the public Google endpoints.
	TokenURL   string
	APIBaseURL string
}

// NewConfig validates cfg. Missing credentials and archive paths are not
// rejected here: the workflow reports them with its own failure messages.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandUpload, CommandPublish:
	case "":
		return nil, errors.New("command is required: 'upload' or 'publish'")
	default:
		return nil, fmt.Errorf("unknown command %q: must be 'upload' or 'publish'", cfg.Command)
	}

	if cfg.ExtensionID == "" {
		return nil, errors.New("extension id is required")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	return &cfg, nil
}
