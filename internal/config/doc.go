// Package config loads and validates toolbox configuration.
//
// Configuration is read from a TOML file (default ~/.config/toolbox/config.toml,
// falling back to ./toolbox.toml), merged over repository defaults, normalized
// (path expansion, env fallbacks), then validated. All path fields on a loaded
// Config are absolute.
package config
