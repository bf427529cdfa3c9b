package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)
	log.Debug("hello", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(Config{OutputPath: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug", zapcore.InfoLevel))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense", zapcore.InfoLevel))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("", zapcore.WarnLevel))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("  ", zapcore.ErrorLevel))
}

func TestMultiLogger_WritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	ml.LogSessionEvent("Session started", zap.String("session_id", "abc"))
	ml.LogAppError("Something broke", zap.String("where", "test"))
	// below the error file's level
	ml.Error().Info("not written")
	require.NoError(t, ml.Close())

	reader := NewLogReader(dir)

	sessions, err := reader.ReadLogs(CategorySession, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Session started", sessions[0].Message)
	assert.Equal(t, "info", sessions[0].Level)
	assert.Equal(t, "abc", sessions[0].Fields["session_id"])
	assert.NotEmpty(t, sessions[0].Timestamp)

	errs, err := reader.ReadLogs(CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Something broke", errs[0].Message)
}

func TestNewMultiLogger_RequiresDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{})
	assert.Error(t, err)
}

func TestDailyFile_Rotates(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local)
	file := &dailyFile{dir: dir, category: CategorySession, now: func() time.Time { return day }}
	require.NoError(t, file.open())

	_, err := file.Write([]byte("first\n"))
	require.NoError(t, err)

	day = day.Add(2 * time.Minute)
	_, err = file.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, file.close())

	first, err := os.ReadFile(filepath.Join(dir, "session-20240301.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "session-20240302.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(second))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategorySession))
	assert.True(t, ValidCategory(CategoryError))
	assert.False(t, ValidCategory("queue"))
}

func TestLoggerAdapter_FallsBackToGeneral(t *testing.T) {
	general := zap.NewNop()
	adapter := NewSingleLoggerAdapter(general)

	assert.Same(t, general, adapter.Session())
	assert.Empty(t, adapter.LogsDir())
	adapter.LogAppError("ignored")
	assert.NoError(t, adapter.Close())
}

func TestLoggerAdapter_UsesMultiLogger(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)
	adapter := NewLoggerAdapter(ml, zap.NewNop())

	adapter.Session().Info("from adapter")
	adapter.LogAppError("adapter error")
	require.NoError(t, adapter.Close())

	assert.Equal(t, dir, adapter.LogsDir())
	entries, err := NewLogReader(dir).ReadLogs(CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "adapter error", entries[0].Message)
}

func TestLogReader_ReadLogsLimitAndPlainLines(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)
	path := reader.GetLogPath(CategorySession, time.Now())
	content := `{"ts":"2024-01-01T00:00:00Z","level":"info","msg":"one"}
not json at all

{"ts":"2024-01-01T00:00:02Z","level":"warn","msg":"three"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	all, err := reader.ReadLogs(CategorySession, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "not json at all", all[1].Message)
	assert.Equal(t, "info", all[1].Level)

	last, err := reader.ReadLogs(CategorySession, time.Now(), 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "three", last[0].Message)
}

func TestLogReader_MissingFile(t *testing.T) {
	entries, err := NewLogReader(t.TempDir()).ReadLogs(CategoryError, time.Now(), 10)

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogReader_SearchLogs(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)
	content := `{"level":"info","msg":"Session started","url":"https://example.com/a"}
{"level":"error","msg":"Tool error","line":"ERROR: Unsupported URL"}
{"level":"info","msg":"Session finished"}
`
	require.NoError(t, os.WriteFile(reader.GetLogPath(CategorySession, time.Now()), []byte(content), 0644))

	byMessage, err := reader.SearchLogs(CategorySession, time.Now(), "session", 0)
	require.NoError(t, err)
	assert.Len(t, byMessage, 2)

	byField, err := reader.SearchLogs(CategorySession, time.Now(), "unsupported", 0)
	require.NoError(t, err)
	require.Len(t, byField, 1)
	assert.Equal(t, "Tool error", byField[0].Message)

	limited, err := reader.SearchLogs(CategorySession, time.Now(), "session", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Session finished", limited[0].Message)
}

func TestLogReader_ListDates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"session-20240101.log", "session-20240315.log", "session-bogus.log", "error-20240101.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	dates, err := NewLogReader(dir).ListDates(CategorySession)

	require.NoError(t, err)
	assert.Equal(t, []string{"20240315", "20240101"}, dates)
}

func TestLogReader_TailLogs(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)
	reader.pollInterval = 10 * time.Millisecond
	path := reader.GetLogPath(CategorySession, time.Now())
	require.NoError(t, os.WriteFile(path, []byte(`{"msg":"old"}`+"\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	entries := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- reader.TailLogs(ctx, CategorySession, entries) }()

	// give the tailer time to seek to the end before appending
	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"msg":"new"}` + "\n")
	require.NoError(t, err)
	f.Close()

	select {
	case entry := <-entries:
		assert.Equal(t, "new", entry.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("tail did not pick up the new line")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("tail did not stop")
	}
}
