package config

const (
	defaultInputDir           = "."
	defaultOutputDir          = "~/.local/share/forge/build"
	defaultStateDir           = "~/.local/share/forge"
	defaultLogDir             = "~/.local/share/forge/logs"
	defaultHTTPTimeoutSeconds = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

var defaultIgnoreDirs = []string{".git", "node_modules", "target"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Build: Build{
			HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
			WriteIndex:         true,
			IgnoreDirs:         append([]string(nil), defaultIgnoreDirs...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
