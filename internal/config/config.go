package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Narration NarrationConfig `yaml:"narration"`
	Skill     SkillConfig     `yaml:"skill"`
	Messages  MessagesConfig  `yaml:"messages"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	AllowOrigins []string      `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
}

type MySQLConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Session backends.
const (
	SessionBackendAttributes = "attributes"
	SessionBackendMemory     = "memory"
	SessionBackendRedis      = "redis"
)

type SessionConfig struct {
	Backend   string        `yaml:"backend"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// Catalog sources.
const (
	CatalogSourceConfig = "config"
	CatalogSourceMySQL  = "mysql"
)

type CatalogConfig struct {
	Source  string                 `yaml:"source"`
	Stories map[string]StoryConfig `yaml:"stories"`
}

type StoryConfig struct {
	Title    string   `yaml:"title"`
	Segments []string `yaml:"segments"`
}

// Narration modes.
const (
	NarrationAudioPlayer = "audio_player"
	NarrationSSML        = "ssml"
)

type NarrationConfig struct {
	Mode string `yaml:"mode"`
}

type SkillConfig struct {
	ApplicationID string `yaml:"application_id"`
}

// MessagesConfig holds the text/template sources for every spoken reply.
// Empty fields fall back to the built-in defaults.
type MessagesConfig struct {
	Launch       string `yaml:"launch"`
	Begin        string `yaml:"begin"`
	UnknownStory string `yaml:"unknown_story"`
	End          string `yaml:"end"`
	Pause        string `yaml:"pause"`
	Farewell     string `yaml:"farewell"`
	Unsupported  string `yaml:"unsupported"`
	Help         string `yaml:"help"`
	Failure      string `yaml:"failure"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and defaults, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply environment variable overrides
	if v := os.Getenv("STORYTELLER_REDIS_PASSWORD"); v != "" {
		cfg.Database.Redis.Password = v
	}
	if v := os.Getenv("STORYTELLER_MYSQL_PASSWORD"); v != "" {
		cfg.Database.MySQL.Password = v
	}
	if v := os.Getenv("STORYTELLER_APPLICATION_ID"); v != "" {
		cfg.Skill.ApplicationID = v
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Database.Redis.Host == "" {
		c.Database.Redis.Host = "localhost"
	}
	if c.Database.Redis.Port == 0 {
		c.Database.Redis.Port = 6379
	}
	if c.Database.MySQL.Port == 0 {
		c.Database.MySQL.Port = 3306
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionBackendAttributes
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "storyteller:session:"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = time.Hour
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogSourceConfig
	}
	if c.Narration.Mode == "" {
		c.Narration.Mode = NarrationAudioPlayer
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks enumerated settings and the inline catalog.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendAttributes, SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend)
	}

	switch c.Narration.Mode {
	case NarrationAudioPlayer, NarrationSSML:
	default:
		return fmt.Errorf("narration.mode: unknown mode %q", c.Narration.Mode)
	}

	switch c.Catalog.Source {
	case CatalogSourceConfig:
		if len(c.Catalog.Stories) == 0 {
			return fmt.Errorf("catalog.stories: at least one story is required")
		}
	case CatalogSourceMySQL:
		if c.Database.MySQL.Host == "" || c.Database.MySQL.Database == "" {
			return fmt.Errorf("database.mysql: host and database are required for catalog.source=mysql")
		}
	default:
		return fmt.Errorf("catalog.source: unknown source %q", c.Catalog.Source)
	}

	for id, story := range c.Catalog.Stories {
		if id == "" || strings.Contains(id, "-") {
			return fmt.Errorf("catalog.stories: invalid story id %q", id)
		}
		if len(story.Segments) == 0 {
			return fmt.Errorf("catalog.stories[%s]: no segments", id)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
