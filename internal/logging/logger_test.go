package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"trace", TRACE, false},
		{"DEBUG", DEBUG, false},
		{"", INFO, false},
		{" warning ", WARN, false},
		{"Error", ERROR, false},
		{"verbose", INFO, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLogger_FileLevels(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLoggerWithOptions("physics", Options{Dir: dir, ConsoleLevel: ERROR, FileLevel: DEBUG})
	require.NoError(t, err)

	assert.False(t, logger.Enabled(TRACE))
	assert.True(t, logger.Enabled(DEBUG))

	logger.Trace("скрытое сообщение")
	logger.Debug("раскол тела %d", 7)
	logger.Info("столкновение")
	require.NoError(t, logger.Close())
	logger.Info("после закрытия в файл не пишется")

	files, err := filepath.Glob(filepath.Join(dir, "physics_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[DEBUG] [physics] раскол тела 7")
	assert.Contains(t, content, "[INFO] [physics] столкновение")
	assert.NotContains(t, content, "скрытое")
	assert.NotContains(t, content, "после закрытия")
}

func TestLogger_NilIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("ничего")
		logger.SetLevels(TRACE, TRACE)
		assert.False(t, logger.Enabled(ERROR))
		assert.NoError(t, logger.Close())
	})
}

func TestDefaultLogger(t *testing.T) {
	CloseDefaultLogger()
	assert.Nil(t, Default())
	assert.NotPanics(t, func() { Info("без глобального логгера сообщение отбрасывается") })

	require.NoError(t, InitDefaultLogger("simulator"))
	assert.Equal(t, "simulator", Default().Component())
	CloseDefaultLogger()
	assert.Nil(t, Default())
}

func TestLoggerManager(t *testing.T) {
	lm := NewLoggerManager()

	a, err := lm.GetLogger("world")
	require.NoError(t, err)
	b := lm.MustGetLogger("world")
	assert.Same(t, a, b, "Логгер компонента создаётся один раз")

	lm.MustGetLogger("storage")
	assert.Equal(t, []string{"storage", "world"}, lm.ListComponents())

	require.NoError(t, lm.SetLogLevel("world", TRACE, TRACE))
	assert.True(t, a.Enabled(TRACE))
	assert.Error(t, lm.SetLogLevel("missing", INFO, INFO))

	require.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}
