// Package logging constructs slog loggers for the toolbox daemon and CLI.
//
// Two output formats are supported: a human-oriented console format and
// structured JSON. Components attach a standardized "component" attribute so
// console output can prefix messages with their origin.
package logging
