package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/heysubinoy/pyazkv/pkg/kv"
	"gopkg.in/yaml.v3"
)

// Storage backends selectable with Backend.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendRaft   = "raft"
)

type Config struct {
	NodeID     string        `yaml:"node_id"`
	Backend    string        `yaml:"backend"`
	BoltPath   string        `yaml:"bolt_path"`
	RaftAddr   string        `yaml:"raft_addr"`
	RaftData   string        `yaml:"raft_data"`
	RaftLeader bool          `yaml:"raft_leader"`
	GRPCAddr   string        `yaml:"grpc_addr"`
	HTTPAddr   string        `yaml:"http_addr"`
	Timeout    time.Duration `yaml:"timeout"`
	LogLevel   string        `yaml:"log_level"`
	FailPolicy string        `yaml:"fail_policy"`
}

// LoadConfig loads configuration from a YAML file if path is provided,
// otherwise it falls back to environment variables.
// Environment variables override values read from the file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	// If path is provided and file exists, load from YAML
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			// If path was explicitly provided but file doesn't exist, return error
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.NodeID == "" && c.Backend != BackendRaft {
		c.NodeID = "pyaz"
	}
	if c.BoltPath == "" {
		c.BoltPath = fmt.Sprintf("./pyaz/%s.db", c.NodeID)
	}
	if c.RaftData == "" {
		c.RaftData = fmt.Sprintf("./pyaz/%s", c.NodeID)
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = ":9090"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.FailPolicy == "" {
		c.FailPolicy = "fail-fast"
	}
}

// Validate checks the fields required by the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendBolt:
	case BackendRaft:
		if c.NodeID == "" {
			return fmt.Errorf("NODE_ID is required (set via environment or config file)")
		}
		if c.RaftAddr == "" {
			return fmt.Errorf("RAFT_ADDR is required (set via environment or config file)")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendMemory, BackendBolt, BackendRaft)
	}

	if _, err := kv.ParsePolicy(c.FailPolicy); err != nil {
		return fmt.Errorf("invalid fail_policy: %w", err)
	}
	return nil
}

// applyEnvOverrides allows environment variables to override YAML config values
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NODE_ID"); v != "" {
		cfg.NodeID = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("BOLT_PATH"); v != "" {
		cfg.BoltPath = v
	}
	if v := os.Getenv("RAFT_ADDR"); v != "" {
		cfg.RaftAddr = v
	}
	if v := os.Getenv("RAFT_DATA"); v != "" {
		cfg.RaftData = v
	}
	if v := os.Getenv("GRPC_ADDR"); v != "" {
		cfg.GRPCAddr = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FAIL_POLICY"); v != "" {
		cfg.FailPolicy = v
	}
	if v := os.Getenv("RAFT_LEADER"); v != "" {
		leader, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RAFT_LEADER value: %w", err)
		}
		cfg.RaftLeader = leader
	}
	if v := os.Getenv("TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TIMEOUT value: %w", err)
		}
		cfg.Timeout = timeout
	}
	return nil
}
