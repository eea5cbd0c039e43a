// Package logging builds the slog loggers used by the CLI.
//
// The console format prints the message first followed by key=value pairs,
// which keeps progress output readable in a terminal. The json format emits
// one object per line for log collection. Components receive a *slog.Logger
// explicitly; nothing in this repository uses slog's default logger.
package logging
