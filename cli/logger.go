package cli

import (
	"f0oster/pneaudit/auditlog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newConsoleLogger builds the stderr logger operators see when something outside the
// audit log goes wrong, including failures to write the audit log itself.
func newConsoleLogger(level string) *zap.Logger {
	sev, err := auditlog.ParseSeverity(level)
	if err != nil {
		sev = auditlog.Info
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(sev.ZapLevel())
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	config.InitialFields = map[string]interface{}{
		"service": "pneaudit",
	}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}
