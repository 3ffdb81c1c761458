// Package config loads runtime settings from defaults, an optional config
// file, YTCORE_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ytget/ytcore/internal/logger"
	"github.com/ytget/ytcore/pkg/client"
	"github.com/ytget/ytcore/youtube/cipher"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. YTCORE_JS_ENGINE.
	EnvPrefix = "YTCORE"
	// FileName is the config file base name; yaml, toml and json are read.
	FileName = "ytcore"
	// ComponentsAll enables every log component.
	ComponentsAll = "all"
)

// Keys.
const (
	KeyTimeout        = "timeout"
	KeyRetries        = "retries"
	KeyUserAgent      = "user_agent"
	KeyProxy          = "proxy"
	KeyClientVersion  = "client_version"
	KeyJSEngine       = "js_engine"
	KeyCacheDir       = "cache_dir"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyLogComponents  = "log_components"
	KeyPreferAdaptive = "prefer_adaptive"
)

// Config holds every tunable of a session and its collaborators.
type Config struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
	UserAgent      string        `mapstructure:"user_agent"`
	Proxy          string        `mapstructure:"proxy"`
	ClientVersion  string        `mapstructure:"client_version"`
	JSEngine       string        `mapstructure:"js_engine"`
	CacheDir       string        `mapstructure:"cache_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	LogComponents  []string      `mapstructure:"log_components"`
	PreferAdaptive bool          `mapstructure:"prefer_adaptive"`
}

// DefaultCacheDir is where persisted decipher operations live by default.
// It is empty when the platform has no user cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ytcore")
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyRetries, 3)
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyProxy, "")
	v.SetDefault(KeyClientVersion, "")
	v.SetDefault(KeyJSEngine, cipher.EngineOtto)
	v.SetDefault(KeyCacheDir, DefaultCacheDir())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogComponents, []string{string(logger.ComponentApp)})
	v.SetDefault(KeyPreferAdaptive, true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags defines the flags Init binds. Flag names use dashes where
// keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./ytcore.{yaml,toml,json} or the user config dir)")
	fs.Duration("timeout", 0, "HTTP timeout")
	fs.Int("retries", 0, "HTTP attempts for transient failures")
	fs.String("user-agent", "", "HTTP User-Agent")
	fs.String("proxy", "", "HTTP proxy URL")
	fs.String("client-version", "", "X-YouTube-Client-Version for the JSON fallback")
	fs.String("js-engine", "", "script engine: otto or goja")
	fs.String("cache-dir", "", "directory for persisted decipher operations (empty string keeps them in memory)")
	fs.String("log-level", "", "trace, debug, info, warn or error")
	fs.String("log-format", "", "text, json or color")
	fs.StringSlice("log-components", nil, "log components to enable, or \"all\"")
	fs.Bool("prefer-adaptive", true, "put adaptive streams ahead of muxed ones when selecting")
}

// Init binds the flags present in fs and reads the config file. An explicit
// file named by --config must exist; the search path is optional.
func Init(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs != nil {
		for _, key := range []string{
			KeyTimeout, KeyRetries, KeyUserAgent, KeyProxy, KeyClientVersion,
			KeyJSEngine, KeyCacheDir, KeyLogLevel, KeyLogFormat, KeyLogComponents,
			KeyPreferAdaptive,
		} {
			if f := fs.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	explicit := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "ytcore"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.JSEngine = strings.ToLower(strings.TrimSpace(c.JSEngine))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative: %d", c.Retries)
	}
	if _, err := cipher.EngineFactory(c.JSEngine); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if _, err := c.components(); err != nil {
		return err
	}
	return nil
}

// ClientConfig returns the HTTP client settings.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		Timeout:   c.Timeout,
		Retries:   c.Retries,
		UserAgent: c.UserAgent,
		ProxyURL:  c.Proxy,
	}
}

// LoggerConfig returns logger settings writing to w.
func (c Config) LoggerConfig(w io.Writer) (*logger.Config, error) {
	lc := logger.DefaultConfig()
	if w != nil {
		lc.Output = w
	}
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}
	enabled, err := c.components()
	if err != nil {
		return nil, err
	}
	lc.Level = level
	lc.Format = format
	for comp := range lc.Components {
		lc.Components[comp] = enabled[comp]
	}
	return lc, nil
}

func (c Config) components() (map[logger.Component]bool, error) {
	known := make(map[logger.Component]bool, len(logger.Components))
	for _, comp := range logger.Components {
		known[comp] = true
	}
	out := make(map[logger.Component]bool)
	for _, raw := range c.LogComponents {
		for _, name := range strings.Split(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			switch {
			case name == "":
			case name == ComponentsAll:
				for comp := range known {
					out[comp] = true
				}
			case known[logger.Component(name)]:
				out[logger.Component(name)] = true
			default:
				return nil, fmt.Errorf("unknown log component: %q", name)
			}
		}
	}
	return out, nil
}
