// Package configfiles provides the embedded example configuration file used
// to bootstrap a new pairreview config on first run.
package configfiles

import "embed"

//go:embed config.example.yaml
var configFS embed.FS

// GetConfigExample returns the example configuration file content, used as
// the template written to disk when no config file exists yet.
func GetConfigExample() ([]byte, error) {
	return configFS.ReadFile("config.example.yaml")
}
