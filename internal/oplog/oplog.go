// Package oplog provides the append-only, date-partitioned operation log.
// Every public operation logs its start and completion (or failure).
// Logging failures never abort the primary operation: when the log
// directory or file cannot be used, the logger degrades to a nop, and
// write errors are swallowed at the sink.
package oplog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured operation events to ops-YYYY-MM-DD.log files
type Logger struct {
	z *zap.Logger
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// New opens (or creates) today's log file under dir. Any failure to do
// so yields a nop logger rather than an error (log-and-continue).
func New(dir string) *Logger {
	if dir == "" {
		return Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Nop()
	}
	name := fmt.Sprintf("ops-%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Nop()
	}
	return NewWithSink(file)
}

// NewWithSink builds a logger over an arbitrary writer (used by tests)
func NewWithSink(w zapcore.WriteSyncer) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		&swallowSyncer{w: w},
		zapcore.InfoLevel,
	)
	return &Logger{z: zap.New(core)}
}

// swallowSyncer suppresses write errors so a full disk or revoked
// permission on the log file cannot fail the operation being logged
type swallowSyncer struct {
	w zapcore.WriteSyncer
}

func (s *swallowSyncer) Write(p []byte) (int, error) {
	if s.w == nil {
		return len(p), nil
	}
	if _, err := s.w.Write(p); err != nil {
		return len(p), nil
	}
	return len(p), nil
}

func (s *swallowSyncer) Sync() error {
	if s.w == nil {
		return nil
	}
	s.w.Sync() //nolint:errcheck // sync failures are deliberately ignored
	return nil
}

// Operation tracks one logged operation from start to completion
type Operation struct {
	ID    string
	Name  string
	start time.Time
	z     *zap.Logger
}

// Start logs the beginning of a named operation and returns its handle
func (l *Logger) Start(name string, fields ...zap.Field) *Operation {
	op := &Operation{
		ID:    uuid.NewString(),
		Name:  name,
		start: time.Now(),
		z:     l.z,
	}
	op.z.Info("operation started",
		append([]zap.Field{zap.String("op", name), zap.String("id", op.ID)}, fields...)...)
	return op
}

// Complete logs a successful completion with the elapsed duration
func (op *Operation) Complete(fields ...zap.Field) {
	op.z.Info("operation completed",
		append([]zap.Field{
			zap.String("op", op.Name),
			zap.String("id", op.ID),
			zap.Duration("elapsed", time.Since(op.start)),
		}, fields...)...)
}

// Fail logs a failed completion with the error and elapsed duration
func (op *Operation) Fail(err error, fields ...zap.Field) {
	op.z.Error("operation failed",
		append([]zap.Field{
			zap.String("op", op.Name),
			zap.String("id", op.ID),
			zap.Duration("elapsed", time.Since(op.start)),
			zap.Error(err),
		}, fields...)...)
}

// Event logs a one-off informational event tied to no operation
func (l *Logger) Event(msg string, fields ...zap.Field) {
	l.z.Info(msg, fields...)
}

// Warn logs a warning event
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.z.Warn(msg, fields...)
}
