package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	// Backend Configuration
	API    APIConfig
	Socket SocketConfig

	// Session Configuration
	Session SessionConfig

	// Local Server Configuration
	Server ServerConfig

	// Logger Configuration
	Logger LoggerConfig
}

// APIConfig is the configuration for the REST backend
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`

	// Bounded retries for transient identity-fetch failures before the
	// session is treated as invalid
	IdentityRetries    int           `env:"API_IDENTITY_RETRIES" envDefault:"2"`
	IdentityRetryDelay time.Duration `env:"API_IDENTITY_RETRY_DELAY" envDefault:"500ms"`
}

// SocketConfig is the configuration for the live channel
type SocketConfig struct {
	URL            string        `env:"SOCKET_URL" envDefault:"ws://localhost:8081/ws"`
	ConnectTimeout time.Duration `env:"SOCKET_CONNECT_TIMEOUT" envDefault:"20s"`

	// Reconnect policy: fixed initial delay doubling up to the cap.
	// Attempts = 0 means unbounded.
	ReconnectDelay    time.Duration `env:"SOCKET_RECONNECT_DELAY" envDefault:"1s"`
	ReconnectDelayMax time.Duration `env:"SOCKET_RECONNECT_DELAY_MAX" envDefault:"5s"`
	ReconnectAttempts int           `env:"SOCKET_RECONNECT_ATTEMPTS" envDefault:"0"`

	// Keepalive
	PingInterval   time.Duration `env:"SOCKET_PING_INTERVAL" envDefault:"30s"`
	PongWait       time.Duration `env:"SOCKET_PONG_WAIT" envDefault:"60s"`
	WriteWait      time.Duration `env:"SOCKET_WRITE_WAIT" envDefault:"10s"`
	MaxMessageSize int64         `env:"SOCKET_MAX_MESSAGE_SIZE" envDefault:"65536"`
}

// SessionConfig is the configuration for credential persistence
type SessionConfig struct {
	ServiceName string `env:"SESSION_SERVICE_NAME" envDefault:"onestop"`
	TokenKey    string `env:"SESSION_TOKEN_KEY" envDefault:"onestop_token"`
	FileDir     string `env:"SESSION_FILE_DIR" envDefault:"~/.config/onestop/credentials"`
	FilePass    string `env:"SESSION_FILE_PASS" envDefault:"onestop-file-key"`
}

// ServerConfig is the configuration for the agent's local health endpoint
type ServerConfig struct {
	Host string `env:"AGENT_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"AGENT_PORT" envDefault:"8090"`
	Mode string `env:"AGENT_MODE" envDefault:"release"`
}

// LoggerConfig is the configuration for the logger
type LoggerConfig struct {
	Level        string `env:"LOGGER_LEVEL" envDefault:"info"`
	Mode         string `env:"LOGGER_MODE" envDefault:"production"`
	Encoding     string `env:"LOGGER_ENCODING" envDefault:"json"`
	ColorEnabled bool   `env:"LOGGER_COLOR_ENABLED" envDefault:"true"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		fmt.Printf("Error loading configuration: %v", err)
		return nil, err
	}
	return cfg, nil
}
