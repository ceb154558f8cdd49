package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Media    MediaConfig    `mapstructure:"media"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Auth     AuthConfig     `mapstructure:"auth"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path        string `mapstructure:"path"`
	BusyTimeout int    `mapstructure:"busy_timeout_ms"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // "redis" | "memory"
	TTL     time.Duration `mapstructure:"ttl"`
}

type MediaConfig struct {
	PlayerBinary string        `mapstructure:"player_binary"`
	SocketDir    string        `mapstructure:"socket_dir"`
	HandleDir    string        `mapstructure:"handle_dir"`
	FadeDuration time.Duration `mapstructure:"fade_duration"`
}

type GenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

type AuthConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml, overlays environment variables, and returns Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: DATABASE_SQLITE_PATH -> database.sqlite.path
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8087)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.graceful_shutdown_timeout", "10s")
	v.SetDefault("database.sqlite.path", "kiosk.db")
	v.SetDefault("database.sqlite.busy_timeout_ms", 5000)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("media.player_binary", "mpv")
	v.SetDefault("media.fade_duration", "1s")
	v.SetDefault("genai.model", "gemini-2.5-flash")
	v.SetDefault("genai.timeout", "30s")
	v.SetDefault("genai.temperature", 0.7)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "1234")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// SQLiteDSN builds the DSN for the local database file.
func SQLiteDSN(cfg SQLiteConfig) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", cfg.Path, cfg.BusyTimeout)
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
