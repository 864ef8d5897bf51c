package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("unknown level falls back to info", func(t *testing.T) {
		log, err := New("verbose", "")
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zap.DebugLevel))
		assert.True(t, log.Core().Enabled(zap.InfoLevel))
	})

	t.Run("debug level enables debug", func(t *testing.T) {
		log, err := New("debug", "")
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zap.DebugLevel))
	})

	t.Run("file sink receives entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		log, err := New("info", path)
		require.NoError(t, err)

		log.Info("route saved", zap.String("slug", "kl-7"))
		_ = log.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "route saved")
		assert.Contains(t, string(data), "kl-7")
	})
}
