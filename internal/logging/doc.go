// Package logging builds the shared slog logger and provides helpers for
// consistent structured attributes across components.
//
// Two formats are supported: "console" for human-readable text output and
// "json" for machine-ingestible logs with normalized key names. Component
// loggers carry a standardized component attribute so log lines can be
// filtered per subsystem.
package logging
