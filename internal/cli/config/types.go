// Package config provides configuration management for the regcalc CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// OnCycle is the cycle policy: "abort" or "continue".
	OnCycle string `koanf:"on_cycle"`
	// Lowercase folds input lines to lower case before parsing.
	Lowercase bool `koanf:"lowercase"`
	Verbose   bool `koanf:"verbose"`
	// LogFormat selects the slog handler: "text" or "json".
	LogFormat    string      `koanf:"log_format"`
	OutputFormat string      `koanf:"output"`
	REPL         *REPLConfig `koanf:"repl"`
}

// REPLConfig holds configuration for the interactive session.
type REPLConfig struct {
	Prompt      string `koanf:"prompt"`
	HistoryFile string `koanf:"history_file"`
}

// Default configuration values.
const (
	DefaultOnCycle   = "abort"
	DefaultLogFormat = "text"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPrompt    = "regcalc> "
)

// Allowed values for enumerated options.
var (
	OnCycleValues   = []string{"abort", "continue"}
	LogFormatValues = []string{"text", "json"}
	OutputValues    = []string{"auto", "text", "markdown", "json"}
)

// GetREPLConfig returns the REPL config with defaults applied for any unset values.
func (c *Config) GetREPLConfig() *REPLConfig {
	if c.REPL == nil {
		return &REPLConfig{Prompt: DefaultPrompt}
	}
	repl := *c.REPL
	if repl.Prompt == "" {
		repl.Prompt = DefaultPrompt
	}
	return &repl
}
