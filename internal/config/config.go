package config

import (
	"github.com/slotbook/service-booking/internal/events"
	"github.com/slotbook/service-booking/pkg/config"
)

// ListConfig holds list endpoint behaviour.
type ListConfig struct {
	DefaultLimit int
	// StrictCustomerFilter reports a customer filter without matches as
	// NOT_FOUND instead of an empty page.
	StrictCustomerFilter bool
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    config.DatabaseConfig
	KafkaConfig config.KafkaConfig
	List        ListConfig
}

// Load reads configuration from BOOKING_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	v.SetDefault("list.default_limit", 5)
	v.SetDefault("list.strict_customer_filter", true)

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "service.port", 8080),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "db.name", "bookings"),
		KafkaConfig: config.LoadKafkaConfig(v, events.TopicBookingEvents),
		List: ListConfig{
			DefaultLimit:         v.GetInt("list.default_limit"),
			StrictCustomerFilter: v.GetBool("list.strict_customer_filter"),
		},
	}, nil
}
