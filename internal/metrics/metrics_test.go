package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFile(t *testing.T) {
	before := testutil.ToFloat64(filesTotal.WithLabelValues(FileDuplicate))
	RecordFile(FileDuplicate)
	after := testutil.ToFloat64(filesTotal.WithLabelValues(FileDuplicate))

	if after-before != 1 {
		t.Errorf("files_total{outcome=duplicate} delta = %v, want 1", after-before)
	}
}

func TestRecordChunk(t *testing.T) {
	okBefore := testutil.ToFloat64(chunksTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(chunksTotal.WithLabelValues("error"))
	rowsBefore := testutil.ToFloat64(rowsInserted.WithLabelValues("EURUSD"))

	RecordChunk("EURUSD", 1000, 20*time.Millisecond, nil)
	RecordChunk("EURUSD", 500, 20*time.Millisecond, errors.New("boom"))

	if d := testutil.ToFloat64(chunksTotal.WithLabelValues("ok")) - okBefore; d != 1 {
		t.Errorf("chunks_total{status=ok} delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(chunksTotal.WithLabelValues("error")) - errBefore; d != 1 {
		t.Errorf("chunks_total{status=error} delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(rowsInserted.WithLabelValues("EURUSD")) - rowsBefore; d != 1000 {
		t.Errorf("rows_inserted_total delta = %v, want 1000", d)
	}
}

func TestRecordRun(t *testing.T) {
	t1 := time.Unix(1759300000, 0)
	RecordRun(RunNoNewData, t1)
	if got := testutil.ToFloat64(lastSuccess); got != float64(t1.Unix()) {
		t.Errorf("last_success = %v, want %v", got, t1.Unix())
	}

	t2 := t1.Add(time.Hour)
	RecordRun(RunFailed, t2)
	if got := testutil.ToFloat64(lastRun); got != float64(t2.Unix()) {
		t.Errorf("last_run = %v, want %v", got, t2.Unix())
	}
	if got := testutil.ToFloat64(lastSuccess); got != float64(t1.Unix()) {
		t.Errorf("last_success = %v, want unchanged %v", got, t1.Unix())
	}
}

func TestHandler(t *testing.T) {
	RecordAcquire("GBPUSD", time.Second, nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fxsync_acquire_runs_total{instrument="GBPUSD",status="ok"}`) {
		t.Errorf("metrics output missing acquire counter:\n%s", body)
	}
}

func TestPush(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := Push(context.Background(), server.URL, "fxsync"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if path != "/metrics/job/fxsync" {
		t.Errorf("push path = %q, want /metrics/job/fxsync", path)
	}
}
