package config

// OTLPConfig holds OpenTelemetry trace export configuration.
//
// Traces are exported over OTLP HTTP to a local collector or agent.
// See internal/observability for setup.
type OTLPConfig struct {
	// Enabled turns trace export on. Default: false.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint (default: localhost:4318).
	Endpoint string `mapstructure:"endpoint"`
	// Environment is the deployment environment tag (default: dev).
	Environment string `mapstructure:"environment"`
	// ServiceName is the service name attached to spans (default: lantern).
	ServiceName string `mapstructure:"service_name"`
}
