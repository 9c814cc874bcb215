package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *PrometheusRecorder) string {
	t.Helper()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck // test cleanup

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

func TestPrometheusRecorder_Exposes(t *testing.T) {
	r := NewPrometheus()

	r.IncTryonJob("completed")
	r.IncTryonJob("completed")
	r.IncTryonJob("timed_out")
	r.ObserveTryonDuration(4 * time.Second)
	r.IncTryonPoll("processing")
	r.IncQuotaRejection("user")

	body := scrape(t, r)

	assert.Contains(t, body, `iburba_tryon_jobs_total{status="completed"} 2`)
	assert.Contains(t, body, `iburba_tryon_jobs_total{status="timed_out"} 1`)
	assert.Contains(t, body, `iburba_tryon_job_duration_seconds_count 1`)
	assert.Contains(t, body, `iburba_tryon_polls_total{state="processing"} 1`)
	assert.Contains(t, body, `iburba_quota_rejections_total{scope="user"} 1`)
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "unknown", sanitizeLabel(""))
	assert.Equal(t, "in_queue", sanitizeLabel("in queue"))
	assert.Len(t, sanitizeLabel(string(make([]byte, 100))), maxLabelLen)
}

func TestNoop(t *testing.T) {
	r := NewNoop()

	assert.NotPanics(t, func() {
		r.IncTryonJob("completed")
		r.ObserveTryonDuration(time.Second)
		r.IncTryonPoll("queued")
		r.IncQuotaRejection("system")
	})
}
