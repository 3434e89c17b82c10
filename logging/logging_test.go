package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestLevels(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)

	logger.Debugw("debug")
	logger.Debugf("debug %d", 1)
	logger.Infow("info")
	logger.Warnw("warn", "key", "value")
	test.That(t, observed.Len(), test.ShouldEqual, 4)
	test.That(t, observed.FilterMessage("debug 1").Len(), test.ShouldEqual, 1)

	logger.SetLevel(WARN)
	logger.Debugw("hidden")
	logger.Infow("hidden")
	logger.Warnw("shown")
	test.That(t, observed.Len(), test.ShouldEqual, 5)
	test.That(t, observed.All()[4].Level, test.ShouldEqual, zapcore.WarnLevel)
	test.That(t, observed.FilterMessage("hidden").Len(), test.ShouldEqual, 0)
}

func TestStructuredFields(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("frame processed", "width", 160, "height", 120, "dangling")

	entries := observed.FilterMessage("frame processed").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	fields := entries[0].ContextMap()
	test.That(t, fields["width"], test.ShouldEqual, int64(160))
	test.That(t, fields["height"], test.ShouldEqual, int64(120))
	test.That(t, fields, test.ShouldContainKey, "dangling")
}

func TestSublogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("engine")
	logger.AddAppender(NewWriterAppender(&buf))
	logger.SetLevel(INFO)

	sub := logger.Sublogger("vertical")
	sub.Debugw("below level")
	sub.Infow("scan done", "columns", 4)

	out := buf.String()
	test.That(t, out, test.ShouldContainSubstring, "engine.vertical")
	test.That(t, out, test.ShouldContainSubstring, "scan done")
	test.That(t, out, test.ShouldContainSubstring, "INFO")
	test.That(t, out, test.ShouldContainSubstring, `"columns": 4`)
	test.That(t, out, test.ShouldContainSubstring, "logging/logging_test.go")
	test.That(t, out, test.ShouldNotContainSubstring, "below level")
	test.That(t, strings.Count(out, "\n"), test.ShouldEqual, 1)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depthnav.log")
	appender, closer := NewFileAppender(path, 1, 1)
	logger := NewBlankLogger("cli")
	logger.AddAppender(appender)

	logger.Warnw("frame over budget", "seq", 3)
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, closer.Close(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "WARN")
	test.That(t, string(data), test.ShouldContainSubstring, "cli")
	test.That(t, string(data), test.ShouldContainSubstring, "frame over budget")
}
