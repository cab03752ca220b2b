package config

import _ "embed"

// DefaultConfigYAML built-in defaults, overridden by an external file and environment variables
//
//go:embed config.default.yaml
var DefaultConfigYAML []byte
