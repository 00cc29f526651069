package config

const (
	defaultOutputDir            = "~/Videos/toolbox"
	defaultDownloadDir          = "~/Downloads"
	defaultLogDir               = "~/.local/share/toolbox/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultEncodeTimeout        = 0 // no limit; encodes can legitimately run for hours
	defaultDownloadTimeout      = 0
	defaultHistoryRetentionDays = 90
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
		},
		Tools: Tools{
			EncodeTimeout:   defaultEncodeTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetentionDays,
		},
	}
}
