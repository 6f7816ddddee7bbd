package app

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/raysh454/gesturepanel/internal/cli"
	"github.com/raysh454/gesturepanel/internal/server"
	"github.com/raysh454/gesturepanel/internal/webclient"
)

// Config is the panel's runtime configuration, normally read from YAML.
type Config struct {
	// Mode is the build mode; it selects the backend base URL.
	Mode string `yaml:"mode"`

	Client  ClientConfig  `yaml:"client"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ClientConfig configures the HTTP client core.
type ClientConfig struct {
	// BaseURL overrides the mode's base URL when set.
	BaseURL string `yaml:"base_url"`

	// Origin resolves a relative base URL. Defaults to the dev server.
	Origin string `yaml:"origin"`

	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// ServerConfig configures the development server.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	BackendURL string `yaml:"backend_url"`
	BasePath   string `yaml:"base_path"`
	IndexFile  string `yaml:"index_file"`
}

// LoggingConfig selects the log level and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config populated with development defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. Environment variables in the
// file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	srv := server.DefaultConfig()
	if c.Mode == "" {
		c.Mode = string(webclient.ModeDevelopment)
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = srv.ListenAddr
	}
	if c.Server.BackendURL == "" {
		c.Server.BackendURL = srv.BackendURL
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = srv.BasePath
	}
	if c.Client.Origin == "" {
		c.Client.Origin = originFor(c.Server.ListenAddr)
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = webclient.DefaultTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// originFor turns a listen address into the URL a local client reaches it at.
func originFor(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// ApplyArgs overlays command-line overrides.
func (c *Config) ApplyArgs(args *cli.CLIArgs) {
	if args == nil {
		return
	}
	if args.Mode != "" {
		c.Mode = args.Mode
	}
	if args.Addr != "" {
		if c.Client.Origin == originFor(c.Server.ListenAddr) {
			c.Client.Origin = originFor(args.Addr)
		}
		c.Server.ListenAddr = args.Addr
	}
	if args.Backend != "" {
		c.Server.BackendURL = args.Backend
	}
	if args.Debug {
		c.Logging.Level = "debug"
	}
}

// WebClientConfig resolves the build mode into a client configuration.
func (c *Config) WebClientConfig() (webclient.Config, error) {
	mode, err := webclient.ParseMode(c.Mode)
	if err != nil {
		return webclient.Config{}, err
	}

	wc := webclient.DefaultConfig(mode)
	if c.Client.BaseURL != "" {
		wc.BaseURL = c.Client.BaseURL
	}
	wc.Origin = c.Client.Origin
	if c.Client.Timeout != 0 {
		wc.Timeout = c.Client.Timeout
	}
	for k, v := range c.Client.Headers {
		wc.DefaultHeaders.Set(http.CanonicalHeaderKey(k), v)
	}
	return wc, nil
}

// ServerConfig returns the dev server settings. Routes, metrics and logging
// are filled in by the Application.
func (c *Config) ServerConfig() server.Config {
	return server.Config{
		ListenAddr: c.Server.ListenAddr,
		BackendURL: c.Server.BackendURL,
		BasePath:   c.Server.BasePath,
		IndexFile:  c.Server.IndexFile,
	}
}
