package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "production", config.Environment)
	require.Equal(t, "http://localhost:5000", config.APIBaseURL)
	require.Equal(t, 10*time.Second, config.RequestTimeout)
	require.Equal(t, 30*time.Second, config.NotificationPollInterval)
	require.Equal(t, 500*time.Millisecond, config.ResolveDebounce)
	require.Equal(t, "jwt", config.TokenKind)
	require.Empty(t, config.DAIContract)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()

	env := "GO_ENV=development\nAPI_BASE_URL=http://sandbox:5000\nRATE_REFRESH_INTERVAL=15s\nREQUESTS_PER_SECOND=2.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	t.Setenv("API_BASE_URL", "http://override:5000")

	config, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "development", config.Environment)
	require.Equal(t, "http://override:5000", config.APIBaseURL)
	require.Equal(t, 15*time.Second, config.RateRefreshInterval)
	require.Equal(t, 2.5, config.RequestsPerSecond)
}
