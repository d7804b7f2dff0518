// Package server holds configuration for the HTTP server started by the serve command.
//
// The actual Fiber application is assembled in cmd/serve.go; this package only owns
// the settings (listen port, API key) so they can participate in the central
// config loading via struct tags.
package server
