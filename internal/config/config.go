package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the embedding service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Model         ModelConfig         `mapstructure:"model"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	EncodeTimeout         time.Duration `mapstructure:"encode_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

// ModelConfig selects and parameterizes the embedding backend. Exactly one
// backend is active per process; the nested blocks configure whichever one
// `backend` names.
type ModelConfig struct {
	Backend    string `mapstructure:"backend"`
	Name       string `mapstructure:"name"`
	CacheDir   string `mapstructure:"cache_dir"`
	Dimensions int    `mapstructure:"dimensions"`

	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Bedrock BedrockConfig `mapstructure:"bedrock"`
	Vertex  VertexConfig  `mapstructure:"vertex"`
}

type OpenAIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Organization string `mapstructure:"organization"`
}

type BedrockConfig struct {
	Region          string `mapstructure:"region"`
	Profile         string `mapstructure:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	Normalize       bool   `mapstructure:"normalize"`
}

type VertexConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	Location        string `mapstructure:"location"`
	Publisher       string `mapstructure:"publisher"`
	Endpoint        string `mapstructure:"endpoint"`
	CredentialsJSON string `mapstructure:"credentials_json"`
}

// CORSConfig controls cross-origin request handling. Credentials stay off
// unless an explicit origin list is configured.
type CORSConfig struct {
	AllowOrigins     string `mapstructure:"allow_origins"`
	AllowCredentials bool   `mapstructure:"allow_credentials"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("EMBEDDERD_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("embedderd")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("EMBEDDERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set.
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		missing = append(missing, "EMBEDDERD_SERVER_LISTEN_ADDR")
	}
	if strings.TrimSpace(c.Model.Backend) == "" {
		missing = append(missing, "EMBEDDERD_MODEL_BACKEND")
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		missing = append(missing, "EMBEDDERD_MODEL_NAME")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("server.body_limit_mb must be > 0")
	}
	if c.Server.EncodeTimeout < 0 {
		return fmt.Errorf("server.encode_timeout must be >= 0")
	}
	if c.Model.Dimensions <= 0 {
		return fmt.Errorf("model.dimensions must be > 0")
	}

	if strings.TrimSpace(c.CORS.AllowOrigins) == "" {
		c.CORS.AllowOrigins = "*"
	}
	if c.CORS.AllowCredentials && corsAllowsAnyOrigin(c.CORS.AllowOrigins) {
		return fmt.Errorf("cors.allow_credentials requires explicit cors.allow_origins, not a wildcard")
	}

	return nil
}

func corsAllowsAnyOrigin(origins string) bool {
	for _, origin := range strings.Split(origins, ",") {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8001")
	v.SetDefault("server.body_limit_mb", 10)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.encode_timeout", "30s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("model.backend", "local")
	v.SetDefault("model.name", "sentence-transformers/all-MiniLM-L6-v2")
	v.SetDefault("model.cache_dir", "./models")
	v.SetDefault("model.dimensions", 384)

	v.SetDefault("model.openai.api_key", "")
	v.SetDefault("model.openai.base_url", "")
	v.SetDefault("model.openai.organization", "")

	v.SetDefault("model.bedrock.region", "")
	v.SetDefault("model.bedrock.profile", "")
	v.SetDefault("model.bedrock.access_key_id", "")
	v.SetDefault("model.bedrock.secret_access_key", "")
	v.SetDefault("model.bedrock.session_token", "")
	v.SetDefault("model.bedrock.normalize", true)

	v.SetDefault("model.vertex.project_id", "")
	v.SetDefault("model.vertex.location", "")
	v.SetDefault("model.vertex.publisher", "google")
	v.SetDefault("model.vertex.endpoint", "")
	v.SetDefault("model.vertex.credentials_json", "")

	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cors.allow_credentials", false)

	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
