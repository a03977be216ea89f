package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"pointview/internal/cloud"
	"pointview/kernel"
)

const openFrame = `0{"sid":"s1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket.io/?EIO=4&transport=websocket"
}

// fakeServer speaks just enough Socket.IO to hand out the given frames after the
// connect handshake. It records the client's pong replies.
type fakeServer struct {
	frames []string
	pongs  atomic.Int32
	conns  atomic.Int32
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.conns.Add(1)

	if conn.WriteMessage(websocket.TextMessage, []byte(openFrame)) != nil {
		return
	}
	_, msg, err := conn.ReadMessage()
	if err != nil || string(msg) != "40" {
		return
	}
	if conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"n1"}`)) != nil {
		return
	}
	for _, f := range s.frames {
		if conn.WriteMessage(websocket.TextMessage, []byte(f)) != nil {
			return
		}
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) == "3" {
			s.pongs.Add(1)
		}
	}
}

func TestClientReceivesBatches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fs := &fakeServer{frames: []string{
		`2`,
		`42["other_event",[{"x":9,"y":9,"z":9}]]`,
		`42["mediapipe_data",[{"x":0.5,"y":0.5,"z":0},{"x":"bad"},{"x":1,"y":0,"z":1}]]`,
		`42["mediapipe_data",{"x":1}]`,
		`42["mediapipe_data",[]]`,
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	mb := kernel.NewMailbox[[]cloud.Point3D](8)
	status := &kernel.Latest[Status]{}
	c := NewClient(Config{URL: wsURL(srv)}, zaptest.NewLogger(t), mb, status)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	var got [][]cloud.Point3D
	require.Eventually(t, func() bool {
		mb.Drain(func(b []cloud.Point3D) { got = append(got, b) })
		return len(got) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, got, 2)
	assert.Equal(t, []cloud.Point3D{cloud.P(0, 0.5, 0.5, 0), cloud.P(1, 1, 0, 1)}, got[0])
	assert.Empty(t, got[1])
	assert.Equal(t, uint64(2), c.Received())
	assert.Equal(t, uint64(1), c.Skipped())

	s, _, ok := status.Load()
	require.True(t, ok)
	assert.Equal(t, Connected, s)
	require.Eventually(t, func() bool { return fs.pongs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	s, _, _ = status.Load()
	assert.Equal(t, Disconnected, s)
}

func TestClientReconnectsAfterServerDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fs := &fakeServer{frames: []string{`42["mediapipe_data",[{"x":0,"y":0,"z":0}]]`, `41`}}
	srv := httptest.NewServer(fs)
	defer srv.Close()

	mock := clock.NewMock()
	mb := kernel.NewMailbox[[]cloud.Point3D](8)
	c := NewClient(Config{URL: wsURL(srv), ReconnectMin: time.Second, ReconnectMax: 4 * time.Second},
		zaptest.NewLogger(t), mb, &kernel.Latest[Status]{}, WithClock(mock))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return fs.conns.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	// The reconnect only happens once the backoff elapses on the mock clock.
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return fs.conns.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return c.Received() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}

func TestClientBacksOffWhenUnreachable(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "no socket here", http.StatusNotFound)
	}))
	defer srv.Close()

	mock := clock.NewMock()
	status := &kernel.Latest[Status]{}
	c := NewClient(Config{URL: wsURL(srv), ReconnectMin: time.Second, ReconnectMax: 2 * time.Second},
		zaptest.NewLogger(t), kernel.NewMailbox[[]cloud.Point3D](2), status, WithClock(mock))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return attempts.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	// Nothing retries until the mock clock moves.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
	s, _, _ := status.Load()
	assert.Equal(t, Disconnected, s)

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return attempts.Load() >= 3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}
