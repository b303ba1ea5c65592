package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP server port
	ServerPort string `env:"SERVER_PORT" envDefault:"5260"`

	// Path to the sqlite database file shared by the command and read sides
	DatabasePath string `env:"DB_PATH" envDefault:"database/hyderabadinfra.db"`

	// Cache configuration
	Cache struct {
		// TTL for assembled history responses, in minutes
		TTLMinutes int `env:"CACHE_TTL_MINUTES" envDefault:"5"`
	}

	// Event bus configuration
	Bus struct {
		// Buffered events per topic before publishes are rejected
		BufferSize int `env:"BUS_BUFFER_SIZE" envDefault:"256"`
	}

	// Cross-service user notification
	UserService struct {
		BaseURL        string `env:"USER_SERVICE_URL" envDefault:"http://localhost:8081"`
		TimeoutSeconds int    `env:"USER_SERVICE_TIMEOUT" envDefault:"5"`
	}

	// Remote listings endpoint used by the search engine
	Listings struct {
		BaseURL        string `env:"LISTINGS_URL" envDefault:"http://localhost:8082/api/public/properties"`
		TimeoutSeconds int    `env:"LISTINGS_TIMEOUT" envDefault:"10"`
	}

	// Default page size for history and search queries
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
