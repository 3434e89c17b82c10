// Package logging is the structured logger shared by the engine, the pipeline and the CLI. Entries
// are built as zap entries and handed to every attached Appender.
package logging

import (
	"fmt"
	"os"
	"runtime"
	"testing"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Level is the lowest severity a Logger writes.
type Level int32

// Levels, in increasing severity.
const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (level Level) zap() zapcore.Level {
	return zapcore.Level(level) + zapcore.DebugLevel
}

// Logger is the logging interface handed to every depthnav component. The w variants take
// alternating keys and values.
type Logger interface {
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	// Sublogger returns a logger named "<parent>.<subname>" writing to the parent's appenders.
	Sublogger(subname string) Logger
	SetLevel(level Level)
	AddAppender(appender Appender)
	Sync() error
}

type logger struct {
	name      string
	level     *atomic.Int32
	localTime bool
	appenders []Appender
}

// NewBlankLogger returns a logger at DEBUG with no appenders. Timestamps are in UTC.
func NewBlankLogger(name string) Logger {
	return &logger{name: name, level: atomic.NewInt32(int32(DEBUG))}
}

// NewTestLogger returns a logger writing every entry to tb's log.
func NewTestLogger(tb testing.TB) Logger {
	l, _ := NewObservedTestLogger(tb)
	return l
}

// NewObservedTestLogger is NewTestLogger that also records entries for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := &logger{level: atomic.NewInt32(int32(DEBUG)), localTime: true}
	l.AddAppender(newTestAppender(tb))
	l.AddAppender(core)
	return l, observed
}

func (l *logger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return &logger{
		name:      name,
		level:     atomic.NewInt32(l.level.Load()),
		localTime: l.localTime,
		appenders: l.appenders,
	}
}

func (l *logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *logger) AddAppender(appender Appender) {
	l.appenders = append(l.appenders, appender)
}

func (l *logger) Sync() error {
	var err error
	for _, appender := range l.appenders {
		multierr.AppendInto(&err, appender.Sync())
	}
	return err
}

func (l *logger) enabled(level Level) bool {
	return int32(level) >= l.level.Load()
}

func (l *logger) Debugf(template string, args ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *logger) Debugw(msg string, keysAndValues ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, msg, keysAndValues)
	}
}

func (l *logger) Infow(msg string, keysAndValues ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, msg, keysAndValues)
	}
}

func (l *logger) Warnw(msg string, keysAndValues ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, msg, keysAndValues)
	}
}

// write must be called directly from the exported method so the caller frame is the call site.
func (l *logger) write(level Level, msg string, keysAndValues []interface{}) {
	const callerSkip = 2
	entry := zapcore.Entry{
		Level:      level.zap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Caller:     zapcore.NewEntryCaller(runtime.Caller(callerSkip)),
	}
	if !l.localTime {
		entry.Time = entry.Time.UTC()
	}
	fields := toFields(keysAndValues)
	for _, appender := range l.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// toFields pairs up keys and values. A trailing key without a value is kept with a marker value.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.String(key, "(missing value)"))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
