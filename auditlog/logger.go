package auditlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// TimestampLayout is the layout of the leading timestamp on each entry.
const TimestampLayout = "2006-01-02 15:04:05"

// lineBreaks keeps each entry on a single line.
var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\r", `\r`, "\n", `\n`)

// Config is everything the audit logger needs; there is no package-level state.
type Config struct {
	Path        string
	Host        string           // defaults to os.Hostname()
	MinSeverity Severity         // defaults to Info
	MaxSize     int64            // defaults to DefaultMaxSize
	Clock       func() time.Time // defaults to time.Now
	FS          FileSystem       // defaults to the OS filesystem
	Sink        io.Writer        // when set, replaces the rotating file at Path
}

// Logger writes "<timestamp> [<host>] <LEVEL>: <message>" lines.
type Logger struct {
	core  zapcore.Core
	host  string
	clock func() time.Time
}

func New(cfg Config) (*Logger, error) {
	if cfg.Sink == nil && cfg.Path == "" {
		return nil, errors.New("audit log path is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.MinSeverity == 0 {
		cfg.MinSeverity = Info
	}
	if cfg.Host == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}
		cfg.Host = host
	}

	var sink zapcore.WriteSyncer
	if cfg.Sink != nil {
		sink = zapcore.AddSync(cfg.Sink)
	} else {
		sink = NewRotatingFile(cfg.Path, cfg.MaxSize, cfg.Clock, cfg.FS)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, cfg.MinSeverity.ZapLevel())

	return &Logger{
		core:  core,
		host:  cfg.Host,
		clock: cfg.Clock,
	}, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:    "time",
		NameKey:    "host",
		MessageKey: "message",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: zapcore.TimeEncoderOfLayout(TimestampLayout),
		EncodeName: func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + name + "]")
		},
		ConsoleSeparator: " ",
	}
}

// Enabled reports whether entries at sev pass the configured threshold.
func (l *Logger) Enabled(sev Severity) bool {
	return l.core.Enabled(sev.ZapLevel())
}

// Log writes one entry. Entries below the threshold are dropped and return nil.
// Write failures are returned so the caller decides whether they matter.
func (l *Logger) Log(sev Severity, message string) error {
	if !l.Enabled(sev) {
		return nil
	}

	entry := zapcore.Entry{
		Level:      sev.ZapLevel(),
		Time:       l.clock(),
		LoggerName: l.host,
		Message:    sev.String() + ": " + lineBreaks.Replace(message),
	}
	if err := l.core.Write(entry, nil); err != nil {
		return fmt.Errorf("write audit log entry: %w", err)
	}
	return nil
}
