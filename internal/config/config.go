package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/httpreq/internal/constants"
	"github.com/oshokin/httpreq/internal/logger"
	"github.com/oshokin/httpreq/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// BaseURL is prepended to request URLs that have no scheme.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Timeout limits a whole exchange (e.g., "30s"). Empty means no limit.
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// ConnectTimeout limits connection setup (e.g., "10s").
	ConnectTimeout string `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	// FollowRedirects indicates whether 3xx responses are followed.
	FollowRedirects bool `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	// MaxRedirects caps the number of followed redirects.
	MaxRedirects int64 `mapstructure:"max_redirects" yaml:"max_redirects"`
	// UserAgent overrides the default User-Agent header.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	// CAFile is a PEM bundle of additional trusted certificate authorities.
	CAFile string `mapstructure:"ca_file" yaml:"ca_file"`
	// ProxyURL routes every request through a proxy.
	ProxyURL string `mapstructure:"proxy_url" yaml:"proxy_url"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// MaxLogLength caps request and response dumps in debug logs (e.g., "1MB").
	MaxLogLength string `mapstructure:"max_log_length" yaml:"max_log_length"`
	// UploadSpeedLimit sets the maximum upload speed (e.g., "1MB", "500KB").
	UploadSpeedLimit string `mapstructure:"upload_speed_limit" yaml:"upload_speed_limit"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit" yaml:"download_speed_limit"`
	// DefaultHeaders are added to every request.
	DefaultHeaders map[string]string `mapstructure:"default_headers" yaml:"default_headers"`
	// ClientCertificate is the path to a TLS client certificate (PEM or PKCS#12).
	ClientCertificate string `mapstructure:"client_certificate" yaml:"client_certificate"`
	// ClientCertificatePassword unlocks an encrypted client certificate.
	ClientCertificatePassword string `mapstructure:"client_certificate_password" yaml:"client_certificate_password"`
	// ClientKey is the path to the TLS client key.
	ClientKey string `mapstructure:"client_key" yaml:"client_key"`
	// ClientKeyPassword unlocks an encrypted client key.
	ClientKeyPassword string `mapstructure:"client_key_password" yaml:"client_key_password"`
	// CertificateCacheSize is the number of parsed client certificates kept in memory.
	CertificateCacheSize int64 `mapstructure:"certificate_cache_size" yaml:"certificate_cache_size"`
	// ParsedTimeout is the parsed exchange timeout.
	ParsedTimeout time.Duration `yaml:"-"`
	// ParsedConnectTimeout is the parsed connection timeout.
	ParsedConnectTimeout time.Duration `yaml:"-"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `yaml:"-"`
	// ParsedMaxLogLength is the parsed dump size limit in bytes.
	ParsedMaxLogLength uint64 `yaml:"-"`
	// ParsedUploadSpeedLimit is the parsed upload speed limit in bytes per second.
	ParsedUploadSpeedLimit int64 `yaml:"-"`
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes per second.
	ParsedDownloadSpeedLimit int64 `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".httpreq.yaml"

	// EnvPrefix prefixes environment variables that override configuration keys.
	EnvPrefix = "HTTPREQ"

	// DefaultConnectTimeout is the default connection setup limit.
	DefaultConnectTimeout = "30s"

	// DefaultMaxRedirects is the default number of followed redirects.
	DefaultMaxRedirects = 10

	// DefaultLogLevel is the default logging verbosity.
	DefaultLogLevel = "info"

	// DefaultMaxLogLength is the default maximum size (in bytes) of logged request and response dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// DefaultCertificateCacheSize is the default number of cached client certificates.
	DefaultCertificateCacheSize = 16
)

// Static error definitions for better error handling.
var (
	// ErrInvalidBaseURL indicates that the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("base_url must be an absolute http or https URL")
	// ErrInvalidTimeout indicates that a timeout setting is negative.
	ErrInvalidTimeout = errors.New("timeout must not be negative")
	// ErrInvalidMaxRedirects indicates that the redirect limit is negative.
	ErrInvalidMaxRedirects = errors.New("max_redirects must not be negative")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidProxyURL indicates that the proxy URL cannot be parsed.
	ErrInvalidProxyURL = errors.New("invalid proxy_url")
	// ErrInvalidCertificateCacheSize indicates that the certificate cache size is negative.
	ErrInvalidCertificateCacheSize = errors.New("certificate_cache_size must not be negative")
	// ErrClientKeyWithoutCertificate indicates a client key configured without a certificate.
	ErrClientKeyWithoutCertificate = errors.New("client_key requires client_certificate")
	// ErrConfigExists indicates that SaveConfig would overwrite an existing file.
	ErrConfigExists = errors.New("configuration file already exists")
	// ErrUnknownKey indicates a key that is not a scalar configuration setting.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ConnectTimeout:       DefaultConnectTimeout,
		MaxRedirects:         DefaultMaxRedirects,
		LogLevel:             DefaultLogLevel,
		MaxLogLength:         humanize.IBytes(DefaultMaxLogLength),
		DefaultHeaders:       map[string]string{},
		CertificateCacheSize: DefaultCertificateCacheSize,
	}
}

// LoadConfig loads configuration settings from a YAML file.
// Settings can be overridden with HTTPREQ_* environment variables.
// A missing default file yields the defaults; a missing explicit file is an error.
func LoadConfig(configFilename string) (*Config, error) {
	explicit := configFilename != ""
	if !explicit {
		configFilename = DefaultConfigFilename
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v); err != nil {
		return nil, err
	}

	v.SetConfigFile(configFilename)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil && (explicit || !isNotExist(err)) {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL != "" {
		baseURL, parseErr := url.Parse(cfg.BaseURL)
		if parseErr != nil || (baseURL.Scheme != "http" && baseURL.Scheme != "https") || baseURL.Host == "" {
			return fmt.Errorf("%w: '%s'", ErrInvalidBaseURL, cfg.BaseURL)
		}
	}

	cfg.ParsedTimeout, err = parseTimeout(cfg.Timeout)
	if err != nil {
		return fmt.Errorf("failed to parse timeout: %w", err)
	}

	cfg.ParsedConnectTimeout, err = parseTimeout(cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse connect timeout: %w", err)
	}

	if cfg.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	cfg.ParsedMaxLogLength = DefaultMaxLogLength

	if maxLogLength := strings.TrimSpace(cfg.MaxLogLength); maxLogLength != "" {
		cfg.ParsedMaxLogLength, err = humanize.ParseBytes(maxLogLength)
		if err != nil {
			return fmt.Errorf("failed to parse max log length: %w", err)
		}
	}

	cfg.ParsedUploadSpeedLimit, err = parseSpeedLimit(cfg.UploadSpeedLimit)
	if err != nil {
		return fmt.Errorf("failed to parse upload speed limit: %w", err)
	}

	cfg.ParsedDownloadSpeedLimit, err = parseSpeedLimit(cfg.DownloadSpeedLimit)
	if err != nil {
		return fmt.Errorf("failed to parse download speed limit: %w", err)
	}

	if proxyURL := strings.TrimSpace(cfg.ProxyURL); proxyURL != "" {
		if _, err = url.Parse(proxyURL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProxyURL, err)
		}
	}

	if cfg.CertificateCacheSize < 0 {
		return ErrInvalidCertificateCacheSize
	}

	if cfg.CertificateCacheSize == 0 {
		cfg.CertificateCacheSize = DefaultCertificateCacheSize
	}

	if cfg.ClientKey != "" && cfg.ClientCertificate == "" {
		return ErrClientKeyWithoutCertificate
	}

	return nil
}

// SaveConfig writes the configuration as YAML, readable by the owner only since it may hold passwords.
// An existing file is kept unless overwrite is set.
func SaveConfig(cfg *Config, configFilename string, overwrite bool) error {
	configFile := getConfigFilePath(configFilename)

	if !overwrite {
		exists, err := utils.IsFileExist(configFile)
		if err != nil {
			return fmt.Errorf("failed to check config file: %w", err)
		}

		if exists {
			return fmt.Errorf("%w: %s", ErrConfigExists, configFile)
		}
	}

	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, content, constants.PrivateFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetConfigValue updates one scalar key in the configuration file while preserving the original
// format, order and comments. The file is created if it does not exist.
func SetConfigValue(configFilename, key, value string) error {
	if !slices.Contains(scalarKeys(), key) {
		return fmt.Errorf("%w: '%s'", ErrUnknownKey, key)
	}

	configFile := getConfigFilePath(configFilename)

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		originalContent = nil
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setValueInNode(&node, key, value)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.PrivateFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the given config file path or the default.
func getConfigFilePath(configFilename string) string {
	if configFilename == "" {
		return DefaultConfigFilename
	}

	return configFilename
}

// setDefaults registers every key of Default, which also makes them visible to AutomaticEnv.
func setDefaults(v *viper.Viper) error {
	defaults, err := defaultValues()
	if err != nil {
		return err
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return nil
}

func defaultValues() (map[string]any, error) {
	content, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}

	var values map[string]any
	if err = yaml.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}

	return values, nil
}

// scalarKeys returns the configuration keys that hold a single value.
func scalarKeys() []string {
	values, err := defaultValues()
	if err != nil {
		return nil
	}

	keys := make([]string, 0, len(values))

	for key, value := range values {
		if _, isMap := value.(map[string]any); !isMap {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	return keys
}

// setValueInNode sets a top-level key in the YAML node tree, appending it when absent.
func setValueInNode(node *yaml.Node, key, value string) {
	if node.Kind == 0 {
		node.Kind = yaml.DocumentNode
	}

	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 {
		node.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	mapNode := node.Content[0]
	if mapNode.Kind != yaml.MappingNode {
		mapNode.Kind = yaml.MappingNode
		mapNode.Tag = "!!map"
		mapNode.Value = ""
		mapNode.Content = nil
	}

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != key {
			continue
		}

		valueNode := mapNode.Content[i+1]

		// Update the value while preserving style.
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = ""
		valueNode.Value = value

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value})
}

func parseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	if timeout < 0 {
		return 0, ErrInvalidTimeout
	}

	return timeout, nil
}

func parseSpeedLimit(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}

	limit, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}

	// The rate limiter accepts only int64 so we transform it safely in order to use it later.
	return utils.SafeUint64ToInt64(limit), nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}
