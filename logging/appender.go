package logging

import (
	"io"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender receives every entry a Logger writes. A zapcore.Core is an Appender.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// ConsoleAppender writes one console-encoded line per entry.
type ConsoleAppender struct {
	io.Writer
	encoder zapcore.Encoder
}

// NewWriterAppender returns an appender writing to writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer, consoleEncoder()}
}

// NewFileAppender returns an appender writing to a size-rotated log file, and the closer for that
// file. maxSizeMB <= 0 uses lumberjack's default of 100 megabytes.
func NewFileAppender(filename string, maxSizeMB, maxBackups int) (ConsoleAppender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return NewWriterAppender(rotator), rotator
}

func (a ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := a.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	_, err = a.Writer.Write(buf.Bytes())
	return err
}

// Sync flushes regular files. Standard streams are skipped; syncing them fails on some platforms.
func (a ConsoleAppender) Sync() error {
	if f, ok := a.Writer.(*os.File); ok && f != os.Stdout && f != os.Stderr {
		return f.Sync()
	}
	return nil
}

// testAppender logs each entry through tb so output stays with the test that produced it.
type testAppender struct {
	tb      testing.TB
	encoder zapcore.Encoder
}

func newTestAppender(tb testing.TB) Appender {
	return testAppender{tb: tb, encoder: consoleEncoder()}
}

func (a testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	a.tb.Helper()
	buf, err := a.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	a.tb.Log(strings.TrimSuffix(buf.String(), "\n"))
	return nil
}

func (a testAppender) Sync() error {
	return nil
}
