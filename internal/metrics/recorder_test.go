package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.UpdateReceived("message")
	r.UpdateReceived("message")
	r.UpdateReceived("callback")
	r.MessagesSent(3)
	r.HandlerError("price")
	r.EntryLogged("Others")
	r.Rollover()
	r.ObserveSheetsRequest("get", nil, 10*time.Millisecond)
	r.ObserveSheetsRequest("get", errors.New("denied"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.updates.WithLabelValues("message")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.messagesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.handlerErrors.WithLabelValues("price")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entriesLogged.WithLabelValues("Others")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rollovers))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sheetsRequests.WithLabelValues("get", "fail")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.sheetsDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.UpdateReceived("message")
	r.MessagesSent(1)
	r.HandlerError("x")
	r.EntryLogged("Transport")
	r.Rollover()
	r.ObserveSheetsRequest("update", nil, time.Second)
}

func TestServerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg).Rollover()

	srv, err := Listen("127.0.0.1:0", "/metrics", reg)
	require.NoError(t, err)
	go srv.Serve()
	defer func() { _ = srv.Shutdown(context.Background()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "tracker_rollovers_total 1"), string(body))
}
