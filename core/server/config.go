package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	// An empty key disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
}

// IsProtected reports whether API key authentication is enabled.
func (c Config) IsProtected() bool {
	return c.ApiKey != ""
}
