package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"ctidash/config"
	"ctidash/threat"
	"ctidash/util/goroutine"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// loadTestConfig loads configuration from env only, in an empty directory
func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("CTIDASH_OTX_API_KEY", "")
	t.Setenv("OTX_API_KEY", "")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := InitConfig()
	require.NoError(t, err)
	return cfg
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestNewApp_StrictModeRequiresAPIKey(t *testing.T) {
	cfg := loadTestConfig(t, nil)
	sugar := zap.NewNop().Sugar()

	app, err := newApp(cfg, zap.NewNop(), sugar)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNewApp_GracefulModeServesWithoutClient(t *testing.T) {
	goroutine.AssertNoLeaks(t)

	port := freePort(t)
	cfg := loadTestConfig(t, map[string]string{
		"CTIDASH_STARTUP_MODE": "graceful",
		"CTIDASH_API_HOST":     "127.0.0.1",
		"CTIDASH_API_PORT":     strconv.Itoa(port),
	})

	app, err := newApp(cfg, zap.NewNop(), zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Nil(t, app.FeedClient)
	assert.Nil(t, app.FeedHandler)

	require.NoError(t, app.Start(context.Background()))
	defer app.Shutdown()

	client := &http.Client{Timeout: 2 * time.Second}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := client.Get(base + "/health")
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 3*time.Second, 50*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/api/threats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Feed client not initialized", body["detail"])

	client.CloseIdleConnections()
}

func TestApp_WaitForShutdownOnContextCancel(t *testing.T) {
	goroutine.AssertNoLeaks(t)

	cfg := loadTestConfig(t, map[string]string{
		"CTIDASH_STARTUP_MODE": "graceful",
		"CTIDASH_API_HOST":     "127.0.0.1",
		"CTIDASH_API_PORT":     strconv.Itoa(freePort(t)),
	})

	app, err := newApp(cfg, zap.NewNop(), zap.NewNop().Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, app.Start(ctx))
	defer app.Shutdown()

	waitErr := make(chan error, 1)
	go func() { waitErr <- app.WaitForShutdown() }()

	cancel()
	select {
	case err := <-waitErr:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("WaitForShutdown did not return after cancel")
	}
}

func TestNewApp_WiresFeedClient(t *testing.T) {
	otx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k-123", r.Header.Get("X-OTX-API-KEY"))
		fmt.Fprint(w, `{"count":1,"next":null,"results":[{"id":"p1","tags":["malware"],
			"indicators":[{"indicator":"x.com","type":"domain","created":"2024-01-01T00:00:00"}]}]}`)
	}))
	defer otx.Close()

	cfg := loadTestConfig(t, map[string]string{
		"CTIDASH_OTX_API_KEY":   "k-123",
		"CTIDASH_FEED_BASE_URL": otx.URL,
	})

	app, err := newApp(cfg, zap.NewNop(), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NotNil(t, app.FeedClient)
	require.NotNil(t, app.FeedHandler)
	defer app.FeedHandler.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/threats?days=1", nil)
	rec := httptest.NewRecorder()
	app.APIServer.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []threat.ThreatIndicator
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	// one genuine domain record plus the four samples
	require.Len(t, out, 5)
	assert.Equal(t, "x.com", out[0].Indicator)
	assert.Equal(t, threat.SeverityHigh, out[0].Severity)
	assert.Equal(t, threat.SourceExternalFeed, out[0].Source)
}

func TestInitLogger(t *testing.T) {
	_, sugar, err := InitLogger("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, sugar)

	logger, _, err := InitLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, _, err = InitLogger("loud", "console")
	assert.Error(t, err)

	_, _, err = InitLogger("info", "xml")
	assert.Error(t, err)
}
