/*
main.go - Application entry point

PURPOSE:
  The practrack command: runs the HTTP server and offers the same
  operations (import, summary, export, reset, sites) from the shell.

COMMANDS:
  serve                          HTTP API with graceful shutdown
  import <file>                  Add students from a .csv/.xlsx/.xls roster
  summary                        Print the completion matrix
  export records|summary|students -o file.xlsx
  reset --yes                    Wipe students, logs and custom sites
  sites list|set <name> <hours>|delete <name>

GLOBAL FLAGS:
  --db         SQLite database path (overrides PRACTRACK_DB)
  --log-level  debug|info|warn|error (overrides PRACTRACK_LOG_LEVEL)

ENVIRONMENT:
  See package config. A .env file in the working directory is loaded first.

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
