package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const AVATAR_SIZE = 64

const (
	StoreBackendMemory = "memory"
	StoreBackendBadger = "badger"
	StoreBackendMySQL  = "mysql"

	ImagesBackendKV  = "kv"
	ImagesBackendGCS = "gcs"
)

type MySQLConfig struct {
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	Host string `mapstructure:"host"`
	Name string `mapstructure:"name"`
}

type BadgerConfig struct {
	Path       string `mapstructure:"path"`
	GCSchedule string `mapstructure:"gc_schedule"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type ImagesConfig struct {
	Backend string `mapstructure:"backend"`
	Bucket  string `mapstructure:"bucket"`
}

type IdentityConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Port      string         `mapstructure:"port"`
	GinMode   string         `mapstructure:"gin_mode"`
	PublicURL string         `mapstructure:"public_url"`
	Origins   []string       `mapstructure:"cors_origins"`
	Identity  IdentityConfig `mapstructure:"identity"`
	Store     StoreConfig    `mapstructure:"store"`
	Badger    BadgerConfig   `mapstructure:"badger"`
	MySQL     MySQLConfig    `mapstructure:"mysql"`
	Images    ImagesConfig   `mapstructure:"images"`
	Upload    struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	} `mapstructure:"upload"`
	Log LogConfig `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("public_url", "http://localhost:8080")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("identity.url", "http://localhost:8787")
	v.SetDefault("identity.timeout", 10*time.Second)
	v.SetDefault("store.backend", StoreBackendBadger)
	v.SetDefault("store.max_retries", 10)
	v.SetDefault("badger.path", "./data/badger")
	v.SetDefault("badger.gc_schedule", "@every 10m")
	v.SetDefault("mysql.user", "")
	v.SetDefault("mysql.pass", "")
	v.SetDefault("mysql.host", "")
	v.SetDefault("mysql.name", "feed")
	v.SetDefault("images.backend", ImagesBackendKV)
	v.SetDefault("images.bucket", "")
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from .env, an optional config.yaml in the working directory and the environment.
// Environment variables win; nested keys map with '.' replaced by '_' (STORE_BACKEND, MYSQL_HOST, ...).
func Load(log *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, skipping")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// every key needs a default, otherwise Unmarshal never consults the environment for it
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error parsing config.yaml")
		}
		log.Debug("no config.yaml found, using defaults and environment")
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendBadger, StoreBackendMySQL:
	default:
		return errors.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	switch c.Images.Backend {
	case ImagesBackendKV:
	case ImagesBackendGCS:
		if c.Images.Bucket == "" {
			return errors.Errorf("images.bucket must be set for the %v images backend", ImagesBackendGCS)
		}
	default:
		return errors.Errorf("unknown images.backend %q", c.Images.Backend)
	}
	if c.Port == "" {
		return errors.New("port must be set")
	}
	if c.Store.MaxRetries <= 0 {
		return errors.New("store.max_retries must be positive")
	}
	return nil
}

// NewLogger builds the process logger from the log section.
func NewLogger(conf LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(conf.Level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log.level")
	}
	logger.SetLevel(level)
	switch conf.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("unknown log.format %q", conf.Format)
	}
	return logger, nil
}
