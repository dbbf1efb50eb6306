package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := oneOf("on_cycle", c.OnCycle, OnCycleValues); err != nil {
		return err
	}
	if err := oneOf("log_format", c.LogFormat, LogFormatValues); err != nil {
		return err
	}
	return oneOf("output", c.OutputFormat, OutputValues)
}

func oneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("invalid %s %q: must be one of %s", key, value, strings.Join(allowed, ", "))
}
