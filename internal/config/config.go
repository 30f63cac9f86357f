package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Server ServerConfig `envPrefix:""`
	DB     DBConfig     `envPrefix:"DB_"`
	JWT    JWTConfig    `envPrefix:"JWT_"`
	Push   PushConfig   `envPrefix:"VAPID_"`
	Backup BackupConfig `envPrefix:"BACKUP_"`
}

type ServerConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
}

type DBConfig struct {
	Path string `env:"PATH" envDefault:"choreme.db"`
}

type JWTConfig struct {
	Secret string `env:"SECRET,required"`
	Issuer string `env:"ISSUER" envDefault:"choreme"`
}

// PushConfig holds the VAPID key pair for web push. Push is disabled when
// the keys are empty.
type PushConfig struct {
	PublicKey  string `env:"PUBLIC_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
	Subscriber string `env:"SUBSCRIBER" envDefault:"mailto:admin@choreme.app"`
}

// BackupConfig holds the S3 target for encrypted database snapshots.
// Backups are disabled when the bucket is empty.
type BackupConfig struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	Passphrase      string `env:"PASSPHRASE"`
	IntervalHours   int    `env:"INTERVAL_HOURS" envDefault:"24"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c PushConfig) Enabled() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

func (c BackupConfig) Enabled() bool {
	return c.Bucket != "" && c.Passphrase != ""
}
