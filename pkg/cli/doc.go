// Package cli provides common utilities for the livemind command-line tool.
//
// This package includes:
//   - Configuration management (named contexts, kubectl style)
//   - Output formatting (JSON, YAML)
//   - Terminal styling for transcripts and status banners
//
// Configuration is stored in ~/.livemind/config.yaml.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//	ctx, err := cfg.GetCurrentContext()
package cli
