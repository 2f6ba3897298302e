package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
}

type EvaluationConfig struct {
	MetricSet   string `toml:"metric_set"`
	Workers     int    `toml:"workers"`
	ChunkRows   int    `toml:"chunk_rows"`
	MaxRows     int    `toml:"max_rows"`
	PreviewRows int    `toml:"preview_rows"`
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Evaluation EvaluationConfig `toml:"evaluation"`
}

// Default returns a configuration usable without any file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8001",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
			},
			MaxUploadBytes: 100 * 1024 * 1024, // 100MB
		},
		Evaluation: EvaluationConfig{
			MetricSet:   "all",
			ChunkRows:   256,
			MaxRows:     100000,
			PreviewRows: 5,
		},
	}
}

// Load reads a TOML file over the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// FromEnv loads .env (if present), then the file named by FIDELITY_CONFIG,
// then applies environment overrides.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(os.Getenv("FIDELITY_CONFIG"))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("FIDELITY_METRIC_SET"); ok && v != "" {
		c.Evaluation.MetricSet = v
	}
	for name, dst := range map[string]*int{
		"FIDELITY_MAX_ROWS":   &c.Evaluation.MaxRows,
		"FIDELITY_WORKERS":    &c.Evaluation.Workers,
		"FIDELITY_CHUNK_ROWS": &c.Evaluation.ChunkRows,
	} {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = n
	}
	return nil
}
