package cli

import "fmt"

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ScoreThresholdError reports an analysis whose composite trust score fell
// below the configured floor. The analyze command returns it so callers can
// distinguish "analysis failed" from "analysis succeeded, content untrusted".
type ScoreThresholdError struct {
	Path      string
	Score     float64
	Threshold float64
}

func (e *ScoreThresholdError) Error() string {
	return fmt.Sprintf("trust score %.3f for %s below threshold %.3f", e.Score, e.Path, e.Threshold)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewScoreThresholdError creates a new ScoreThresholdError.
func NewScoreThresholdError(path string, score, threshold float64) *ScoreThresholdError {
	return &ScoreThresholdError{
		Path:      path,
		Score:     score,
		Threshold: threshold,
	}
}
