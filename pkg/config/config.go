package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig holds Kafka producer settings.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// Load creates a viper instance reading environment variables with the given
// prefix (BOOKING_DB_HOST for prefix "BOOKING") and an optional config file
// named config.{yaml,json,env} in the working directory.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
}

// GetAppEnv returns the application environment (development, production, ...).
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("app.env")
}

// GetServicePort returns the listen address for the HTTP server, e.g. ":8080".
func GetServicePort(v *viper.Viper, key string, fallback int) string {
	v.SetDefault(key, fallback)
	port := v.GetString(key)
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// LoadDatabaseConfig reads the db.* keys; dbNameKey names the key holding the
// database name so several services can share one environment.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey, defaultName string) DatabaseConfig {
	v.SetDefault(dbNameKey, defaultName)
	return DatabaseConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("db.sslmode"),

		MaxOpenConns:    v.GetInt("db.max_open_conns"),
		MaxIdleConns:    v.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
}

// LoadKafkaConfig reads the kafka.* keys. Brokers is a comma separated list.
func LoadKafkaConfig(v *viper.Viper, defaultTopic string) KafkaConfig {
	v.SetDefault("kafka.topic", defaultTopic)

	var brokers []string
	for _, b := range strings.Split(v.GetString("kafka.brokers"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return KafkaConfig{
		Enabled: v.GetBool("kafka.enabled"),
		Brokers: brokers,
		Topic:   v.GetString("kafka.topic"),
	}
}
