package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/fxsync/internal/acquire"
	"github.com/rickgao/fxsync/internal/scheduler"
)

// fakePostgREST records inserts and reports a fixed count.
type fakePostgREST struct {
	mu       sync.Mutex
	count    int
	inserted []map[string]any
	posts    int
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		fmt.Fprintf(w, `[{"count":%d}]`, f.count)
	case http.MethodPost:
		var rows []map[string]any
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &rows); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.posts++
		f.inserted = append(f.inserted, rows...)
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type testEnv struct {
	dir     string
	staging string
	config  string
}

func newTestEnv(t *testing.T, storeURL, extra string) testEnv {
	t.Helper()

	dir := t.TempDir()
	stagingDir := filepath.Join(dir, "download")
	require.NoError(t, os.MkdirAll(stagingDir, 0o755))

	cfg := fmt.Sprintf(`
instruments: [EURUSD, GBPUSD]
staging:
  dir: %s
store:
  backend: postgrest
  postgrest:
    url: %s
    api_key: ${FXSYNC_TEST_KEY}
    max_retries: 1
    retry_backoff: 10ms
upload:
  batch_size: 2
%s`, stagingDir, storeURL, extra)

	path := filepath.Join(dir, "fxsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	t.Setenv("FXSYNC_TEST_KEY", "service-role")

	return testEnv{dir: dir, staging: stagingDir, config: path}
}

func (e testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", e.config, "--env-file", filepath.Join(e.dir, ".env")))

	err := Execute(context.Background())
	return out.String(), err
}

// stageYesterday writes a file for the default target day with n bars.
func (e testEnv) stageYesterday(t *testing.T, instrument string, n int) string {
	t.Helper()

	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,1.1,1.2,1.0,1.15\n", day.Add(time.Duration(i)*time.Minute).UnixMilli())
	}

	name := fmt.Sprintf("%s-m1-bid-%s-%s.csv",
		strings.ToLower(instrument), day.Format("2006-01-02"), day.AddDate(0, 0, 1).Format("2006-01-02"))
	path := filepath.Join(e.staging, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, Execute(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), "fxsync dev ("), "output = %q", out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"version", "--json"})
	require.NoError(t, Execute(context.Background()))

	var info map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go_version"])
	versionJSON = false
}

func TestMigrateListCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"migrate", "list"})

	require.NoError(t, Execute(context.Background()))
	assert.Contains(t, out.String(), "000001_create_forex_prices.up.sql")
}

func TestReconcileCommand_UploadsAndPushesMetrics(t *testing.T) {
	store := &fakePostgREST{}
	storeServer := httptest.NewServer(store)
	defer storeServer.Close()

	var pushed sync.WaitGroup
	pushed.Add(1)
	var pushPath string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		pushed.Done()
	}))
	defer gateway.Close()

	env := newTestEnv(t, storeServer.URL, fmt.Sprintf("metrics:\n  pushgateway_url: %s\n", gateway.URL))
	path := env.stageYesterday(t, "EURUSD", 5)

	_, err := env.execute(t, "reconcile")
	require.NoError(t, err)

	pushed.Wait()
	assert.Equal(t, "/metrics/job/fxsync", pushPath)

	assert.NoFileExists(t, path)
	assert.Equal(t, 3, store.posts) // 2 + 2 + 1
	require.Len(t, store.inserted, 5)
	assert.Equal(t, "EURUSD", store.inserted[0]["pair"])
}

func TestReconcileCommand_DuplicateDay(t *testing.T) {
	store := &fakePostgREST{count: 1440}
	storeServer := httptest.NewServer(store)
	defer storeServer.Close()

	env := newTestEnv(t, storeServer.URL, "")
	path := env.stageYesterday(t, "GBPUSD", 3)

	_, err := env.execute(t, "reconcile")
	require.NoError(t, err)

	assert.NoFileExists(t, path)
	assert.Zero(t, store.posts)
}

func TestRunCommand_AcquireFailure(t *testing.T) {
	store := &fakePostgREST{}
	storeServer := httptest.NewServer(store)
	defer storeServer.Close()

	env := newTestEnv(t, storeServer.URL, `acquire:
  command: sh
  args: ["-c", "echo no route >&2; exit 4"]
`)
	path := env.stageYesterday(t, "EURUSD", 3)

	_, err := env.execute(t, "run")
	require.Error(t, err)

	var toolErr *acquire.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EURUSD", toolErr.Instrument)
	assert.Equal(t, 4, toolErr.ExitCode)

	// Reconciliation never started.
	assert.FileExists(t, path)
	assert.Zero(t, store.posts)
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, "", "")

	_, err := env.execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.postgrest.url")
}

type fakeStats struct {
	stats scheduler.Stats
	next  time.Time
}

func (f fakeStats) Stats() scheduler.Stats { return f.stats }
func (f fakeStats) Next() time.Time        { return f.next }

func TestHealthHandler(t *testing.T) {
	next := time.Date(2025, 10, 2, 6, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		stats      scheduler.Stats
		wantStatus string
	}{
		{"no runs yet", scheduler.Stats{}, "healthy"},
		{"some failures", scheduler.Stats{Runs: 3, Failures: 1, LastRun: next.Add(-24 * time.Hour)}, "healthy"},
		{"all failed", scheduler.Stats{Runs: 2, Failures: 2, LastRun: next.Add(-24 * time.Hour)}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHealthHandler("/metrics", fakeStats{stats: tt.stats, next: next})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Status   string    `json:"status"`
				Runs     int64     `json:"runs"`
				Failures int64     `json:"failures"`
				NextRun  time.Time `json:"next_run"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.stats.Runs, body.Runs)
			assert.True(t, next.Equal(body.NextRun))
		})
	}
}

func TestHealthHandler_ServesMetrics(t *testing.T) {
	h := newHealthHandler("/metrics", fakeStats{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fxsync_")
}
