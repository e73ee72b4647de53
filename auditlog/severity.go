package auditlog

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Severity levels, ascending. The zero value is unset and is treated as Info.
type Severity int

const (
	Debug Severity = iota + 1
	Info
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// ZapLevel maps a severity onto the zap level used for threshold checks.
func (s Severity) ZapLevel() zapcore.Level {
	switch s {
	case Debug:
		return zapcore.DebugLevel
	case Warning:
		return zapcore.WarnLevel
	case Critical:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseSeverity accepts debug, info, warn/warning and critical/error, case-insensitively.
func ParseSeverity(level string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return Debug, nil
	case "", "info":
		return Info, nil
	case "warn", "warning":
		return Warning, nil
	case "critical", "error":
		return Critical, nil
	default:
		return Info, fmt.Errorf("unknown log level %q", level)
	}
}
