package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys recognised in the config file, the environment and flag bindings.
const (
	KeyProvider     = "provider"
	KeyModel        = "model"
	KeyBase         = "base"
	KeyHead         = "head"
	KeyBackend      = "backend"
	KeyReporter     = "reporter"
	KeyRender       = "render"
	KeyTimeout      = "timeout"
	KeyRetries      = "retries"
	KeyMaxTokens    = "max_tokens"
	KeyTemperature  = "temperature"
	KeyRedact       = "redact"
	KeyEndpoint     = "endpoint"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyGitHubOwner  = "github.owner"
	KeyGitHubRepo   = "github.repo"
	KeyGitHubPR     = "github.pr"
	KeyGitHubAPIURL = "github.api_url"

	keyAPIKey      = "api_key"
	keyGitHubToken = "github.token"
	keyGitHubRef   = "github.ref"
)

// MaxTemperature is the highest temperature any supported provider accepts.
const MaxTemperature = 2.0

// EnvPrefix is prepended to every environment override, e.g. AIREVIEW_BASE.
const EnvPrefix = "AIREVIEW"

// Config is the effective aireview configuration.
type Config struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	Base      string        `mapstructure:"base"`
	Head      string        `mapstructure:"head"`
	Backend   string        `mapstructure:"backend"`
	Reporter  string        `mapstructure:"reporter"`
	Render    string        `mapstructure:"render"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Redact    bool          `mapstructure:"redact"`
	Endpoint  string        `mapstructure:"endpoint"`
	Log       LogConfig     `mapstructure:"log"`
	GitHub    GitHubConfig  `mapstructure:"github"`

	// Temperature is the sampling temperature; 0 keeps the provider default.
	Temperature float64 `mapstructure:"temperature"`

	// APIKey is resolved from the provider's environment variables.
	APIKey string `mapstructure:"api_key"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GitHubConfig controls the github reporter.
type GitHubConfig struct {
	Owner  string `mapstructure:"owner"`
	Repo   string `mapstructure:"repo"`
	PR     int    `mapstructure:"pr"`
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`
	Ref    string `mapstructure:"ref"`
}

// Accepted values for the enumerated keys.
var (
	Providers = []string{"gemini", "google", "openai", "anthropic", "ollama", "lmstudio"}
	Backends  = []string{"exec", "go-git"}
	Reporters = []string{"console", "json", "github"}
	Renders   = []string{"plain", "markdown"}
	LogLevels = []string{"debug", "info", "warn", "error"}
	LogFormat = []string{"text", "json"}
)

var defaultModels = map[string]string{
	"gemini":    "gemini-2.0-flash",
	"google":    "gemini-2.0-flash",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-sonnet-4-20250514",
	"ollama":    "llama3.1",
	"lmstudio":  "llama3.1",
}

var credentialEnv = map[string][]string{
	"gemini":    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"google":    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"ollama":    {EnvPrefix + "_OLLAMA_API_KEY"},
	"lmstudio":  {EnvPrefix + "_OLLAMA_API_KEY"},
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider: "gemini",
		Model:    "",
		Base:     "origin/main",
		Head:     "HEAD",
		Backend:  "exec",
		Reporter: "console",
		Render:   "plain",
		Timeout:  120 * time.Second,
		Retries:  0,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultModel returns the model used when none is configured for provider.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// CredentialEnv returns the environment variables consulted, in order, for
// the provider's API key.
func CredentialEnv(provider string) []string {
	return credentialEnv[provider]
}

// SetDefaults registers every default on v so that env and file overrides are
// visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyProvider, d.Provider)
	v.SetDefault(KeyModel, d.Model)
	v.SetDefault(KeyBase, d.Base)
	v.SetDefault(KeyHead, d.Head)
	v.SetDefault(KeyBackend, d.Backend)
	v.SetDefault(KeyReporter, d.Reporter)
	v.SetDefault(KeyRender, d.Render)
	v.SetDefault(KeyTimeout, d.Timeout.String())
	v.SetDefault(KeyRetries, d.Retries)
	v.SetDefault(KeyMaxTokens, d.MaxTokens)
	v.SetDefault(KeyTemperature, d.Temperature)
	v.SetDefault(KeyRedact, d.Redact)
	v.SetDefault(KeyEndpoint, d.Endpoint)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyGitHubOwner, "")
	v.SetDefault(KeyGitHubRepo, "")
	v.SetDefault(KeyGitHubPR, 0)
	v.SetDefault(KeyGitHubAPIURL, "")
}

// New returns a viper instance with defaults and AIREVIEW_* environment
// overrides wired in.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ConfigDir returns the platform-appropriate config directory for aireview.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aireview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "aireview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "aireview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "aireview"), nil
	default:
		return filepath.Join(home, ".config", "aireview"), nil
	}
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ReadFile merges the config file at path into v. An empty path means
// [ConfigPath]. A missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	path, err := resolvePath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// Load resolves credentials for the configured provider, decodes v into a
// Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	provider := strings.ToLower(v.GetString(KeyProvider))
	if envs := CredentialEnv(provider); len(envs) > 0 {
		if err := v.BindEnv(append([]string{keyAPIKey}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("binding credential env: %w", err)
		}
	}
	if err := v.BindEnv(keyGitHubToken, "GITHUB_TOKEN"); err != nil {
		return Config{}, fmt.Errorf("binding GITHUB_TOKEN: %w", err)
	}
	if err := v.BindEnv(keyGitHubRef, "GITHUB_REF"); err != nil {
		return Config{}, fmt.Errorf("binding GITHUB_REF: %w", err)
	}

	for _, key := range []string{keyAPIKey, keyGitHubToken} {
		if v.InConfig(key) {
			return Config{}, &ValidationError{Key: key, Value: "[set]", Reason: "credentials are read from the environment, not the config file"}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Provider = provider
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidationError reports a config value outside its accepted set.
type ValidationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Reason)
}

// Validate checks every enumerated and numeric setting.
func (c Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{KeyProvider, c.Provider, Providers},
		{KeyBackend, c.Backend, Backends},
		{KeyReporter, c.Reporter, Reporters},
		{KeyRender, c.Render, Renders},
		{KeyLogLevel, strings.ToLower(c.Log.Level), LogLevels},
		{KeyLogFormat, c.Log.Format, LogFormat},
	}
	for _, chk := range checks {
		if !slices.Contains(chk.allowed, chk.value) {
			return &ValidationError{
				Key:    chk.key,
				Value:  chk.value,
				Reason: "must be one of " + strings.Join(chk.allowed, ", "),
			}
		}
	}
	if c.Base == "" {
		return &ValidationError{Key: KeyBase, Reason: "must not be empty"}
	}
	if c.Head == "" {
		return &ValidationError{Key: KeyHead, Reason: "must not be empty"}
	}
	if c.Timeout < 0 {
		return &ValidationError{Key: KeyTimeout, Value: c.Timeout.String(), Reason: "must not be negative"}
	}
	if c.Retries < 0 {
		return &ValidationError{Key: KeyRetries, Value: strconv.Itoa(c.Retries), Reason: "must not be negative"}
	}
	if c.Temperature < 0 || c.Temperature > MaxTemperature {
		return &ValidationError{Key: KeyTemperature, Value: strconv.FormatFloat(c.Temperature, 'g', -1, 64), Reason: "must be between 0 and 2"}
	}
	if c.MaxTokens < 0 {
		return &ValidationError{Key: KeyMaxTokens, Value: strconv.Itoa(c.MaxTokens), Reason: "must not be negative"}
	}
	if c.GitHub.PR < 0 {
		return &ValidationError{Key: KeyGitHubPR, Value: strconv.Itoa(c.GitHub.PR), Reason: "must not be negative"}
	}
	return nil
}

// Redacted returns a copy of c that is safe to print.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "[set]"
	}
	if c.GitHub.Token != "" {
		c.GitHub.Token = "[set]"
	}
	return c
}

// Init writes a config file holding every default to path. An empty path
// means [ConfigPath].
func Init(path string) (string, error) {
	path, err := resolvePath(path)
	if err != nil {
		return "", err
	}
	v := viper.New()
	SetDefaults(v)
	return path, write(v, path)
}

// SetField reads the config file at path, sets key to value and writes it
// back. Unknown keys and malformed values are rejected.
func SetField(path, key, value string) error {
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}
	v := viper.New()
	if err := ReadFile(v, path); err != nil {
		return err
	}
	v.Set(key, typed)
	return write(v, path)
}

func parseValue(key, value string) (any, error) {
	switch key {
	case KeyProvider:
		return oneOf(key, strings.ToLower(value), Providers)
	case KeyBackend:
		return oneOf(key, value, Backends)
	case KeyReporter:
		return oneOf(key, value, Reporters)
	case KeyRender:
		return oneOf(key, value, Renders)
	case KeyLogLevel:
		return oneOf(key, strings.ToLower(value), LogLevels)
	case KeyLogFormat:
		return oneOf(key, value, LogFormat)
	case KeyModel, KeyBase, KeyHead, KeyEndpoint, KeyGitHubOwner, KeyGitHubRepo, KeyGitHubAPIURL:
		return value, nil
	case KeyTimeout:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, &ValidationError{Key: key, Value: value, Reason: "must be a duration such as 90s"}
		}
		return value, nil
	case KeyRetries, KeyMaxTokens, KeyGitHubPR:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, &ValidationError{Key: key, Value: value, Reason: "must be a non-negative integer"}
		}
		return n, nil
	case KeyTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > MaxTemperature {
			return nil, &ValidationError{Key: key, Value: value, Reason: "must be a number between 0 and 2"}
		}
		return f, nil
	case KeyRedact:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, &ValidationError{Key: key, Value: value, Reason: "must be true or false"}
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
}

func oneOf(key, value string, allowed []string) (any, error) {
	if !slices.Contains(allowed, value) {
		return nil, &ValidationError{Key: key, Value: value, Reason: "must be one of " + strings.Join(allowed, ", ")}
	}
	return value, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return ConfigPath()
}

func write(v *viper.Viper, path string) error {
	path, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
