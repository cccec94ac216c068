package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Corpus    Corpus    `yaml:"corpus"`
	Retrieval Retrieval `yaml:"retrieval"`
	LLM       LLM       `yaml:"llm"`
	Feedback  Feedback  `yaml:"feedback"`
	Research  Research  `yaml:"research"`
	Show      Show      `yaml:"show"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

type Corpus struct {
	Path string `yaml:"path"`
}

type Retrieval struct {
	TopK   int  `yaml:"top_k"`
	UseWeb bool `yaml:"use_web"`
}

type LLM struct {
	Provider       string `yaml:"provider"` // "ollama" or "orfeo"
	Model          string `yaml:"model"`
	OllamaURL      string `yaml:"ollama_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	OrfeoModel     string `yaml:"orfeo_model"`
	OrfeoURL       string `yaml:"orfeo_url"`
	TokenEnv       string `yaml:"token_env"`
	MaxTokens      int    `yaml:"max_tokens"`
}

type Feedback struct {
	Backend string `yaml:"backend"` // "json" or "sqlite"
}

type Research struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Show struct {
	Topics []string `yaml:"topics"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for comedyclub.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "comedyclub")
}

// DataDir returns the XDG data directory for comedyclub.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "comedyclub")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/comedyclub/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'comedyclub init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Retrieval: Retrieval{TopK: 3},
		LLM: LLM{
			Provider:       "ollama",
			Model:          "llama3.2:3b",
			OllamaURL:      "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
			OrfeoModel:     "llama3.3:latest",
			TokenEnv:       "ORFEO_TOKEN",
			MaxTokens:      150,
		},
		Feedback: Feedback{Backend: "json"},
		Server:   Server{Port: 8000},
		Logging:  Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Feedback.Backend {
	case "json", "sqlite":
	default:
		return nil, fmt.Errorf("unknown feedback backend %q (want json or sqlite)", cfg.Feedback.Backend)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// CorpusPath returns the configured corpus location or its default under the
// data directory.
func (c *Config) CorpusPath() string {
	if c.Corpus.Path != "" {
		return c.Corpus.Path
	}
	return filepath.Join(c.GetDataDir(), "jokes.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
