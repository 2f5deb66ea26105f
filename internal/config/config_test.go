package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Server.ListenAddr != ":8001" {
		t.Fatalf("expected default listen addr :8001, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.BodyLimitMB != 10 {
		t.Fatalf("expected default body limit 10, got %d", cfg.Server.BodyLimitMB)
	}
	if cfg.Server.EncodeTimeout != 30*time.Second {
		t.Fatalf("expected default encode timeout 30s, got %s", cfg.Server.EncodeTimeout)
	}
	if cfg.Model.Backend != "local" {
		t.Fatalf("expected default backend local, got %q", cfg.Model.Backend)
	}
	if cfg.Model.Name != "sentence-transformers/all-MiniLM-L6-v2" {
		t.Fatalf("unexpected default model name %q", cfg.Model.Name)
	}
	if cfg.Model.Dimensions != 384 {
		t.Fatalf("expected default dimensions 384, got %d", cfg.Model.Dimensions)
	}
	if cfg.CORS.AllowOrigins != "*" || cfg.CORS.AllowCredentials {
		t.Fatalf("expected permissive credential-free CORS defaults, got %+v", cfg.CORS)
	}
	if cfg.Observability.EnableOTLP {
		t.Fatal("expected OTLP export disabled by default")
	}
	if !cfg.Observability.EnableMetrics {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "embedderd.yaml")
	contents := strings.Join([]string{
		"server:",
		"  listen_addr: :9900",
		"  encode_timeout: 5s",
		"model:",
		"  backend: openai",
		"  name: text-embedding-3-small",
		"  dimensions: 1536",
		"  openai:",
		"    api_key: sk-test",
	}, "\n")
	if err := os.WriteFile(file, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(Options{ConfigFile: file})
	if err != nil {
		t.Fatalf("load config file: %v", err)
	}

	if cfg.Server.ListenAddr != ":9900" {
		t.Fatalf("expected listen addr from file, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.EncodeTimeout != 5*time.Second {
		t.Fatalf("expected encode timeout 5s, got %s", cfg.Server.EncodeTimeout)
	}
	if cfg.Model.Backend != "openai" || cfg.Model.Name != "text-embedding-3-small" {
		t.Fatalf("unexpected model block: %+v", cfg.Model)
	}
	if cfg.Model.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected nested openai key, got %q", cfg.Model.OpenAI.APIKey)
	}
	if cfg.Model.Dimensions != 1536 {
		t.Fatalf("expected dimensions 1536, got %d", cfg.Model.Dimensions)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EMBEDDERD_SERVER_LISTEN_ADDR", ":7070")
	t.Setenv("EMBEDDERD_MODEL_BACKEND", "bedrock")
	t.Setenv("EMBEDDERD_MODEL_NAME", "amazon.titan-embed-text-v2:0")
	t.Setenv("EMBEDDERD_MODEL_BEDROCK_REGION", "us-east-1")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("load with env overrides: %v", err)
	}

	if cfg.Server.ListenAddr != ":7070" {
		t.Fatalf("expected env listen addr, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Model.Backend != "bedrock" {
		t.Fatalf("expected env backend, got %q", cfg.Model.Backend)
	}
	if cfg.Model.Name != "amazon.titan-embed-text-v2:0" {
		t.Fatalf("expected env model name, got %q", cfg.Model.Name)
	}
	if cfg.Model.Bedrock.Region != "us-east-1" {
		t.Fatalf("expected env bedrock region, got %q", cfg.Model.Bedrock.Region)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{ListenAddr: ":8001", BodyLimitMB: 10},
			Model:  ModelConfig{Backend: "local", Name: "m", Dimensions: 4},
			CORS:   CORSConfig{AllowOrigins: "*"},
		}
	}

	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"missing model name": {
			mutate:  func(c *Config) { c.Model.Name = " " },
			wantErr: "EMBEDDERD_MODEL_NAME",
		},
		"missing backend": {
			mutate:  func(c *Config) { c.Model.Backend = "" },
			wantErr: "EMBEDDERD_MODEL_BACKEND",
		},
		"zero body limit": {
			mutate:  func(c *Config) { c.Server.BodyLimitMB = 0 },
			wantErr: "body_limit_mb",
		},
		"zero dimensions": {
			mutate:  func(c *Config) { c.Model.Dimensions = 0 },
			wantErr: "dimensions",
		},
		"credentials with wildcard origin": {
			mutate:  func(c *Config) { c.CORS.AllowCredentials = true },
			wantErr: "allow_credentials",
		},
		"credentials with wildcard in list": {
			mutate: func(c *Config) {
				c.CORS.AllowOrigins = "https://a.example, *"
				c.CORS.AllowCredentials = true
			},
			wantErr: "allow_credentials",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateAllowsCredentialsWithExplicitOrigins(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ListenAddr: ":8001", BodyLimitMB: 10},
		Model:  ModelConfig{Backend: "local", Name: "m", Dimensions: 4},
		CORS:   CORSConfig{AllowOrigins: "https://app.example", AllowCredentials: true},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFillsEmptyOrigins(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ListenAddr: ":8001", BodyLimitMB: 10},
		Model:  ModelConfig{Backend: "local", Name: "m", Dimensions: 4},
		CORS:   CORSConfig{AllowOrigins: "  "},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CORS.AllowOrigins != "*" {
		t.Fatalf("expected empty origins to fall back to *, got %q", cfg.CORS.AllowOrigins)
	}
}
