// Package config provides configuration management for the Hope Haven site
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// Values come from an optional .hopehaven.yml, HOPEHAVEN_ prefixed
// environment variables and flags, in increasing precedence. Every value has
// a default, so an empty configuration is valid.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Animation AnimationConfig `mapstructure:"animation" yaml:"animation"`
	Content   ContentConfig   `mapstructure:"content" yaml:"content"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" yaml:"port"`
	Host           string        `mapstructure:"host" yaml:"host"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	StaticDir      string        `mapstructure:"static_dir" yaml:"static_dir"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace" yaml:"shutdown_grace"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AnimationConfig struct {
	FrameInterval    time.Duration `mapstructure:"frame_interval" yaml:"frame_interval"`
	AutoplayInterval time.Duration `mapstructure:"autoplay_interval" yaml:"autoplay_interval"`
	ResizeDebounce   time.Duration `mapstructure:"resize_debounce" yaml:"resize_debounce"`
	ReducedMotion    bool          `mapstructure:"reduced_motion" yaml:"reduced_motion"`
	// Seed fixes the particle random source; 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
}

type ContentConfig struct {
	Path     string        `mapstructure:"path" yaml:"path"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.shutdown_grace", 5*time.Second)

	v.SetDefault("animation.frame_interval", 16*time.Millisecond)
	v.SetDefault("animation.autoplay_interval", 5*time.Second)
	v.SetDefault("animation.resize_debounce", 150*time.Millisecond)
	v.SetDefault("animation.reduced_motion", false)
	v.SetDefault("animation.seed", 0)

	v.SetDefault("content.path", "")
	v.SetDefault("content.watch", true)
	v.SetDefault("content.debounce", 300*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, siteerrors.NewConfigError(siteerrors.CodeInvalidConfig, "failed to decode configuration", err)
	}

	// Origins may arrive as one comma separated env var
	config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins)

	if err := validateConfig(&config); err != nil {
		return nil, siteerrors.NewConfigError(siteerrors.CodeInvalidConfig, "invalid configuration", err)
	}

	return &config, nil
}

func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateAnimationConfig(&config.Animation); err != nil {
		return fmt.Errorf("animation config: %w", err)
	}
	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}

func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	for _, origin := range config.AllowedOrigins {
		if strings.ContainsAny(origin, " \t\r\n") {
			return fmt.Errorf("allowed origin %q is malformed", origin)
		}
	}

	if config.StaticDir != "" {
		if err := validatePath(config.StaticDir); err != nil {
			return fmt.Errorf("static_dir: %w", err)
		}
	}

	if config.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown_grace must not be negative")
	}

	return nil
}

func validateAnimationConfig(config *AnimationConfig) error {
	if config.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %s", config.FrameInterval)
	}
	if config.AutoplayInterval <= 0 {
		return fmt.Errorf("autoplay_interval must be positive, got %s", config.AutoplayInterval)
	}
	if config.ResizeDebounce <= 0 {
		return fmt.Errorf("resize_debounce must be positive, got %s", config.ResizeDebounce)
	}
	return nil
}

func validateContentConfig(config *ContentConfig) error {
	if config.Path != "" {
		if err := validatePath(config.Path); err != nil {
			return fmt.Errorf("path: %w", err)
		}
	}
	if config.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Level)
	}
	switch strings.ToLower(config.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	for _, char := range dangerousChars[:len(dangerousChars)-1] {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
