package config

const (
	defaultDataDir        = "~/.local/share/subtis"
	defaultLogDir         = "~/.local/share/subtis/logs"
	defaultFuzzyThreshold = 0.55
	defaultYearTolerance  = 1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Matcher: Matcher{
			FuzzyThreshold: defaultFuzzyThreshold,
			YearTolerance:  defaultYearTolerance,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
