package anki

// Config holds the connection settings for the AnkiConnect endpoint.
type Config struct {
	// URL is the AnkiConnect endpoint exposed by the Anki desktop add-on.
	URL string `mapstructure:"url" default:"http://localhost:8765"`
	// TimeoutSeconds bounds each individual HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// MaxRetries is how many times a request is attempted before giving up.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
}
