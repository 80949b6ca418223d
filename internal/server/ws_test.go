package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/metrics"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/tracking"
)

func dialLive(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/metrics/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_Broadcast(t *testing.T) {
	mm := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
	srv := New(Config{Metrics: mm})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dialLive(t, ts)
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	expected := `
# HELP bballcoach_server_ws_clients Connected live metrics WebSocket clients
# TYPE bballcoach_server_ws_clients gauge
bballcoach_server_ws_clients 1
`
	assert.NoError(t, testutil.GatherAndCompare(mm.Registry(), strings.NewReader(expected), "bballcoach_server_ws_clients"))

	srv.Hub().Broadcast(tracking.Metrics{
		Timestamp: time.UnixMilli(1700000000000),
		Present:   true,
		Phase:     biomech.PhaseRelease,
		ShotCount: 3,
		Cue:       biomech.CueSnapWrist,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got tracking.Metrics
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, biomech.PhaseRelease, got.Phase)
	assert.Equal(t, 3, got.ShotCount)
	assert.Equal(t, biomech.CueSnapWrist, got.Cue)
}

func TestHub_Disconnect(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dialLive(t, ts)
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return srv.Hub().Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Broadcasting to nobody is a no-op.
	srv.Hub().Broadcast(tracking.Metrics{Present: true})
}

func TestHub_Close(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dialLive(t, ts)
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	srv.Hub().Close()
	assert.Zero(t, srv.Hub().Clients())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected a normal close, got %v", err)
}
