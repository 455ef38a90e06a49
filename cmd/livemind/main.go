// Package main provides the livemind CLI tool.
//
// Usage:
//
//	livemind [flags] <command> [args]
//
// Commands:
//
//	live      - Hold a live audio/video conversation
//	serve     - Run the session archive server
//	sessions  - List archived sessions
//	session   - Show one archived session transcript
//	config    - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.livemind/
//	Use 'livemind config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/livemind/livemind/cmd/livemind/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
