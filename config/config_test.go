package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
parsing:
  workers: 8
  min_block_lines: 5
  policy: all_or_nothing
  vocabulary_file: vocab.yaml
server:
  address: ":9000"
export:
  ndjson_path: out.ndjson
  publish: true
observability:
  log_level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 8, cfg.Parsing.Workers)
	require.Equal(t, 5, cfg.Parsing.MinBlockLines)
	require.Equal(t, "all_or_nothing", cfg.Parsing.Policy)
	require.Equal(t, "vocab.yaml", cfg.Parsing.VocabularyFile)
	require.Equal(t, ":9000", cfg.Server.Address)
	require.True(t, cfg.Export.Publish)
	require.Equal(t, "out.ndjson", cfg.Export.NDJSONPath)
	require.Equal(t, "debug", cfg.Observability.LogLevel)

	// Defaults fill whatever the file left out.
	require.Equal(t, DefaultMinTotalPoints, cfg.Parsing.MinTotalPoints)
	require.Equal(t, DefaultRateBurst, cfg.Server.RateBurst)
	require.Equal(t, int64(DefaultMaxUploadBytes), cfg.Server.MaxUploadBytes)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "parsing:\n  workers: 8\nserver:\n  address: \":9000\"\n")
	t.Setenv("ARMYLISTS_WORKERS", "2")
	t.Setenv("HTTP_ADDRESS", ":7000")
	t.Setenv("HTTP_RATE_LIMIT", "0.5")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("EXPORT_PUBLISH", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Parsing.Workers)
	require.Equal(t, ":7000", cfg.Server.Address)
	require.Equal(t, 0.5, cfg.Server.RateLimit)
	require.Equal(t, "warn", cfg.Observability.LogLevel)
	require.True(t, cfg.Export.Publish)
}

func TestLoadConfig_MissingFileUsesEnvAndDefaults(t *testing.T) {
	t.Setenv("ARMYLISTS_MIN_BLOCK_LINES", "4")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Parsing.MinBlockLines)
	require.Equal(t, DefaultWorkers, cfg.Parsing.Workers)
	require.Equal(t, DefaultHTTPAddress, cfg.Server.Address)
	require.Equal(t, "best_effort", cfg.Parsing.Policy)
	require.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad yaml", body: "parsing: [", wantErr: "failed to unmarshal config"},
		{name: "bad env int", body: "", env: map[string]string{"ARMYLISTS_WORKERS": "many"}, wantErr: "invalid ARMYLISTS_WORKERS"},
		{name: "inverted bounds", body: "parsing:\n  min_total_points: 5000\n  max_total_points: 2000\n", wantErr: "exceeds"},
		{name: "unknown policy", body: "parsing:\n  policy: sometimes\n", wantErr: "unknown parsing.policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
