package config

import "fmt"

// ConfigError reports a malformed or incomplete configuration. It is always
// fatal and raised before any window is touched.
type ConfigError struct {
	Rule string
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Rule != "" {
		return fmt.Sprintf("config: rule %s: %s", e.Rule, msg)
	}
	return "config: " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func ruleError(rule, format string, args ...any) *ConfigError {
	return &ConfigError{Rule: rule, Msg: fmt.Sprintf(format, args...)}
}
