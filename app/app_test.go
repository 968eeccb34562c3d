package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/export"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/sources"
	"github.com/Black-And-White-Club/armylists/config"
	"github.com/stretchr/testify/require"
)

const testLists = `Alice
Vampire Covenant
450 - Vampire Count, General
1200 - 20 Grave Guard
1500 - 40 Skeletons
1350 - Coven Throne
4500

Bob
Dwarven Holds
500 - Thane, General
1000 - 30 Greybeards
1500 - 20 Miners
1500 - Anvil
4500
`

const testResults = `Round,Player,Opponent,Result,Secondary
1,Alice,Bob,13,2
1,Bob,Alice,7,0
`

func testConfig() *config.Config {
	return &config.Config{
		Parsing: config.ParsingConfig{
			Workers:        2,
			MinBlockLines:  config.DefaultMinBlockLines,
			MinTotalPoints: config.DefaultMinTotalPoints,
			MaxTotalPoints: config.DefaultMaxTotalPoints,
			Policy:         "best_effort",
		},
		Server: config.ServerConfig{
			Address:        "127.0.0.1:0",
			RateLimit:      config.DefaultRateLimit,
			RateBurst:      config.DefaultRateBurst,
			MaxUploadBytes: config.DefaultMaxUploadBytes,
		},
		Export: config.ExportConfig{Topic: export.ArmyEntryTopic},
		Observability: config.ObservabilityConfig{
			LogLevel:    "error",
			Environment: "test",
		},
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestApp_ProcessWritesNDJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Export.NDJSONPath = filepath.Join(dir, "armies.ndjson")

	app, err := NewApp(context.Background(), cfg, Options{LogOutput: io.Discard})
	require.NoError(t, err)

	doc, err := app.LoadDocument(
		writeFile(t, dir, "lists.txt", testLists),
		writeFile(t, dir, "results.csv", testResults),
	)
	require.NoError(t, err)
	require.Len(t, doc.Rounds, 2)

	report, err := app.Pipeline.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, report.Armies, 2)
	require.NoError(t, app.Close())

	f, err := os.Open(cfg.Export.NDJSONPath)
	require.NoError(t, err)
	defer f.Close()

	var players []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var army armytypes.ArmyEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &army))
		players = append(players, army.PlayerName)
	}
	require.NoError(t, scanner.Err())
	require.ElementsMatch(t, []string{"Alice", "Bob"}, players)
}

func TestApp_PublishSink(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Publish = true

	app, err := NewApp(context.Background(), cfg, Options{LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.PubSub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := app.PubSub.Subscribe(ctx, cfg.Export.Topic)
	require.NoError(t, err)

	doc, err := sources.NewTextAdapter("lists.txt").Parse([]byte(testLists))
	require.NoError(t, err)
	_, err = app.Pipeline.Process(context.Background(), doc)
	require.NoError(t, err)

	seen := map[string]bool{}
	for range 2 {
		msg := <-messages
		seen[msg.Metadata.Get(export.MetadataPlayer)] = true
		msg.Ack()
	}
	require.Equal(t, map[string]bool{"Alice": true, "Bob": true}, seen)
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "bad log level", mutate: func(c *config.Config) { c.Observability.LogLevel = "loud" }},
		{name: "bad timezone", mutate: func(c *config.Config) { c.Parsing.Timezone = "Mars/Olympus" }},
		{name: "missing vocabulary", mutate: func(c *config.Config) { c.Parsing.VocabularyFile = "/nonexistent/vocab.yaml" }},
		{name: "unwritable export", mutate: func(c *config.Config) { c.Export.NDJSONPath = "/nonexistent/dir/out.ndjson" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := NewApp(context.Background(), cfg, Options{LogOutput: io.Discard})
			require.Error(t, err)
		})
	}
}

func TestApp_LoadDocumentErrors(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), Options{LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.LoadDocument()
	require.Error(t, err)

	_, err = app.LoadDocument(writeFile(t, t.TempDir(), "lists.pdf", "x"))
	require.ErrorIs(t, err, sources.ErrUnsupportedFileType)

	_, err = app.LoadDocument(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_Handler(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), Options{LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Close()
	handler := app.Handler()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/armies/parse?filename=lists.txt", bytes.NewBufferString(testLists))
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "armylists_armies_built_total 2")
}

func TestApp_HandlerWithSeparateMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Observability.MetricsAddress = "127.0.0.1:0"
	app, err := NewApp(context.Background(), cfg, Options{LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Close()

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApp_ServeStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), Options{LogOutput: io.Discard})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()
	cancel()
	require.NoError(t, <-done)
}
