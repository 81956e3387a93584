// Package config provides XML-based configuration management for the console server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"TalentLensConsole"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Remote TalentLens API
	Backend BackendConfig `xml:"Backend"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Workspace lifetime
	Workspace WorkspaceConfig `xml:"Workspace"`

	// Accepted file types
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// BackendConfig describes the remote analysis API
type BackendConfig struct {
	BaseURL         string `xml:"BaseURL"`
	TimeoutSeconds  int    `xml:"TimeoutSeconds"` // 0 = wait for the transport
	DefaultProvider string `xml:"DefaultProvider"`
	ProvidersFile   string `xml:"ProvidersFile"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	StagingDirectory string `xml:"StagingDirectory"`
}

// WorkspaceConfig controls how long idle console workspaces are kept
type WorkspaceConfig struct {
	TTLMinutes             int `xml:"TTLMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// SecurityConfig lists the file types the console accepts
type SecurityConfig struct {
	DocumentTypes      string `xml:"DocumentTypes"`
	DocumentExtensions string `xml:"DocumentExtensions"`
	ArchiveTypes       string `xml:"ArchiveTypes"`
	ArchiveExtensions  string `xml:"ArchiveExtensions"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	LogFile              string `xml:"LogFile"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         3000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 0,
			IdleTimeout:  120,
			BodyLimit:    "200M",
		},
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8080/api",
			TimeoutSeconds:  0,
			DefaultProvider: "openai",
			ProvidersFile:   "",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			StagingDirectory: "./data/staging",
		},
		Workspace: WorkspaceConfig{
			TTLMinutes:             60,
			CleanupIntervalMinutes: 10,
		},
		Security: SecurityConfig{
			DocumentTypes:      "application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			DocumentExtensions: ".pdf,.doc,.docx",
			ArchiveTypes:       "application/zip,application/x-zip-compressed",
			ArchiveExtensions:  ".zip",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFile:              "./data/logs/console.log",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file. A missing file is created
// with defaults. Values from a .env file next to the config, and from the
// process environment, override the file.
func LoadConfig(configPath string) (*AppConfig, error) {
	configDir := filepath.Dir(configPath)

	// .env is optional
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	config := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(configDir)

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- TalentLens Console Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.StagingDirectory = filepath.Join(dataDir, "staging")
	}

	if apiURL := os.Getenv("TALENTLENS_API_URL"); apiURL != "" {
		c.Backend.BaseURL = apiURL
	}

	if timeout := os.Getenv("TALENTLENS_API_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil && t >= 0 {
			c.Backend.TimeoutSeconds = t
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.StagingDirectory)
	resolve(&c.Backend.ProvidersFile)
	resolve(&c.Advanced.LogFile)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetStagingDir returns the absolute staging directory path
func (c *AppConfig) GetStagingDir() string {
	return c.Storage.StagingDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetBackendTimeout returns the remote call timeout; zero means none.
func (c *AppConfig) GetBackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// GetWorkspaceTTL returns how long an idle workspace is kept.
func (c *AppConfig) GetWorkspaceTTL() time.Duration {
	return time.Duration(c.Workspace.TTLMinutes) * time.Minute
}

// GetCleanupInterval returns how often expired workspaces are purged.
func (c *AppConfig) GetCleanupInterval() time.Duration {
	return time.Duration(c.Workspace.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.StagingDirectory,
	}
	if c.Advanced.LogFile != "" {
		dirs = append(dirs, filepath.Dir(c.Advanced.LogFile))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// SplitList splits a comma-separated config value, trimming and lowercasing
// each element and skipping empties.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
