package log

import "time"

// Logger provides structured logging capabilities.
// Implementations can wrap zerolog, zap, logrus, or any other logging library.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Bytes creates a field holding raw bytes, such as an encoded frame.
func Bytes(key string, value []byte) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// WithComponent returns a Logger that tags every entry with a "component" field.
func WithComponent(l Logger, name string) Logger {
	return &componentLogger{next: l, field: String("component", name)}
}

type componentLogger struct {
	next  Logger
	field Field
}

func (c *componentLogger) Debug(msg string, fields ...Field) {
	c.next.Debug(msg, append([]Field{c.field}, fields...)...)
}

func (c *componentLogger) Info(msg string, fields ...Field) {
	c.next.Info(msg, append([]Field{c.field}, fields...)...)
}

func (c *componentLogger) Warn(msg string, fields ...Field) {
	c.next.Warn(msg, append([]Field{c.field}, fields...)...)
}

func (c *componentLogger) Error(msg string, fields ...Field) {
	c.next.Error(msg, append([]Field{c.field}, fields...)...)
}
