package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	API struct {
		// Base URL of the study-planner backend, e.g. http://localhost:8086
		BaseURL string `json:"baseUrl" yaml:"baseUrl"`

		// Path of the GraphQL endpoint relative to BaseURL.
		GraphQLPath string `json:"graphqlPath" yaml:"graphqlPath"`

		// Path of the token refresh endpoint relative to BaseURL.
		RefreshPath string `json:"refreshPath" yaml:"refreshPath"`

		// Path of the notification email-fallback endpoint relative to BaseURL.
		FallbackPath string `json:"fallbackPath" yaml:"fallbackPath"`

		// Timeout applied to ordinary GraphQL requests.
		RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`

		// Timeout applied to the refresh call. A hung refresh stalls every
		// queued operation, so this must stay finite.
		RefreshTimeout time.Duration `json:"refreshTimeout" yaml:"refreshTimeout"`

		// Maximum refresh cycles a single logical operation may trigger.
		MaxAuthRetries int `json:"maxAuthRetries" yaml:"maxAuthRetries"`
	} `json:"api" yaml:"api"`

	Storage struct {
		// Directory holding the credential keys and pending trigger file.
		Path string `json:"path" yaml:"path"`
	} `json:"storage" yaml:"storage"`

	Notifications *NotificationsConfig `json:"notifications" yaml:"notifications"`

	// Status configuration for the local health/status endpoint.
	Status *StatusConfig `json:"status" yaml:"status"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// NotificationsConfig defines local reminder scheduling and reconciliation settings.
type NotificationsConfig struct {
	// Interval between reconciliation passes. The host scheduler treats this
	// as a minimum, not an exact period.
	ReconcileInterval time.Duration `json:"reconcileInterval" yaml:"reconcileInterval"`

	// Age past the intended fire time after which an unconfirmed trigger is
	// treated as possibly missed.
	StalenessWindow time.Duration `json:"stalenessWindow" yaml:"stalenessWindow"`
}

// StatusConfig defines configuration for the local status HTTP server.
type StatusConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`

	Timeouts struct {
		ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
		ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
		WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
		IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	} `json:"timeouts" yaml:"timeouts"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "get working directory failed")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: API_BASEURL -> api.baseUrl (not api.baseurl)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.GraphQLPath == "" {
		cfg.API.GraphQLPath = "/query"
	}
	if cfg.API.RefreshPath == "" {
		cfg.API.RefreshPath = "/refresh-token"
	}
	if cfg.API.FallbackPath == "" {
		cfg.API.FallbackPath = "/api/notifications/check-email-fallback"
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 30 * time.Second
	}
	if cfg.API.RefreshTimeout <= 0 {
		cfg.API.RefreshTimeout = 10 * time.Second
	}
	if cfg.API.MaxAuthRetries <= 0 {
		cfg.API.MaxAuthRetries = 2
	}
	if cfg.Notifications == nil {
		cfg.Notifications = &NotificationsConfig{}
	}
	if cfg.Notifications.ReconcileInterval < 15*time.Minute {
		cfg.Notifications.ReconcileInterval = 15 * time.Minute
	}
	if cfg.Notifications.StalenessWindow <= 0 {
		cfg.Notifications.StalenessWindow = time.Hour
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
