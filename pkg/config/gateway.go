package config

import "time"

// GatewayConfig holds runtime configuration for the API gateway.
type GatewayConfig struct {
	AppName         string
	Environment     string
	Addr            string
	LogLevel        string
	AuthServiceURL  string
	TaskServiceURL  string
	UserServiceURL  string
	UpstreamTimeout time.Duration
}

// LoadGatewayConfig constructs a GatewayConfig from environment variables.
func LoadGatewayConfig() GatewayConfig {
	return GatewayConfig{
		AppName:         GetString("APP_NAME", "API Gateway"),
		Environment:     GetString("ENV", "development"),
		Addr:            GetString("GATEWAY_ADDR", ":8000"),
		LogLevel:        GetString("LOG_LEVEL", "info"),
		AuthServiceURL:  GetString("AUTH_SERVICE_URL", "http://localhost:8001"),
		TaskServiceURL:  GetString("TASK_SERVICE_URL", "http://localhost:8002"),
		UserServiceURL:  GetString("USER_SERVICE_URL", "http://localhost:8003"),
		UpstreamTimeout: GetSeconds("UPSTREAM_TIMEOUT_SECONDS", 5*time.Second),
	}
}
