package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Storage     StorageConfig     `yaml:"storage"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Regulations RegulationsConfig `yaml:"regulations"`
	Auth        AuthConfig        `yaml:"auth"`
	Users       []User            `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig describes the managed storage layout. All generated
// artifacts and uploaded contracts live under BaseDir.
type StorageConfig struct {
	BaseDir          string `yaml:"base_dir"`
	ContractsDir     string `yaml:"contracts_dir"`
	VersionsDir      string `yaml:"versions_dir"`
	SuggestionsDir   string `yaml:"suggestions_dir"`
	SnapshotsDir     string `yaml:"snapshots_dir"`
	ContractManifest string `yaml:"contract_manifest"`
	RegManifest      string `yaml:"reg_manifest"`
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	APIURL      string  `yaml:"api_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
// When APIKey is empty, semantic retrieval is disabled and chat falls
// back to raw text excerpts.
type EmbeddingConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Password string `yaml:"password"`
}

// ArchiveConfig configures the optional object-storage archive for
// generated artifacts. Disabled unless Endpoint is set.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RegulationsConfig struct {
	Recipient           string `yaml:"recipient"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = "regulatory_storage"
	}
	if cfg.Storage.ContractsDir == "" {
		cfg.Storage.ContractsDir = filepath.Join(cfg.Storage.BaseDir, "contracts")
	}
	if cfg.Storage.VersionsDir == "" {
		cfg.Storage.VersionsDir = filepath.Join(cfg.Storage.BaseDir, "contract_versions")
	}
	if cfg.Storage.SuggestionsDir == "" {
		cfg.Storage.SuggestionsDir = filepath.Join(cfg.Storage.BaseDir, "suggestions")
	}
	if cfg.Storage.SnapshotsDir == "" {
		cfg.Storage.SnapshotsDir = filepath.Join(cfg.Storage.BaseDir, "reg_snapshots")
	}
	if cfg.Storage.ContractManifest == "" {
		cfg.Storage.ContractManifest = filepath.Join(cfg.Storage.BaseDir, "contract_manifests.json")
	}
	if cfg.Storage.RegManifest == "" {
		cfg.Storage.RegManifest = filepath.Join(cfg.Storage.BaseDir, "reg_manifests.json")
	}
	if cfg.LLM.APIURL == "" {
		cfg.LLM.APIURL = "https://api.groq.com/openai/v1/chat/completions"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.1-8b-instant"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.4
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1800
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Regulations.FetchTimeoutSeconds == 0 {
		cfg.Regulations.FetchTimeoutSeconds = 40
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// EnsureDirs creates the managed storage directories if they don't exist.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.Storage.BaseDir,
		c.Storage.ContractsDir,
		c.Storage.VersionsDir,
		c.Storage.SuggestionsDir,
		c.Storage.SnapshotsDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
