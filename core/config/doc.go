// Package config handles application configuration loading.
//
// Configuration is assembled from three sources, in order of precedence:
//
//  1. Environment variables (e.g. ANKI_URL, SERVER_PORT, LOG_LEVEL)
//  2. A .env file in the working directory, loaded via godotenv
//  3. Struct tag defaults on the partial configs
//
// Nested keys map to environment variables by joining with underscores, so
// anki.timeout_seconds is set through ANKI_TIMEOUT_SECONDS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	client := anki.NewClient(cfg.Anki)
package config
