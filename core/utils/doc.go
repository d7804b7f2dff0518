// Package utils provides common utility functions for the ankisync application.
// It includes small string formatting helpers used by run reports and other
// shared logic that doesn't fit into domain-specific packages.
package utils
