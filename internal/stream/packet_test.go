package stream

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointview/internal/cloud"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in   string
		kind frameKind
		data string
	}{
		{`0{"sid":"a"}`, frameOpen, `{"sid":"a"}`},
		{`1`, frameClose, ``},
		{`2`, framePing, ``},
		{`3probe`, framePong, `probe`},
		{`6`, frameOther, ``},
		{`40{"sid":"b"}`, frameConnect, `{"sid":"b"}`},
		{`41`, frameDisconnect, ``},
		{`42["mediapipe_data",[]]`, frameEvent, `["mediapipe_data",[]]`},
		{`4212["ev"]`, frameEvent, `["ev"]`},
		{`42/,["ev"]`, frameEvent, `["ev"]`},
		{`42/admin,["ev"]`, frameOther, ``},
		{`44{"message":"no"}`, frameConnectError, `{"message":"no"}`},
		{`45`, frameOther, ``},
	}
	for _, tt := range tests {
		f, err := parseFrame([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.kind, f.kind, tt.in)
		assert.Equal(t, tt.data, string(f.data), tt.in)
	}

	for _, bad := range []string{"", "4", "9"} {
		_, err := parseFrame([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestParseOpen(t *testing.T) {
	o, err := parseOpen([]byte(`{"sid":"x","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`))
	require.NoError(t, err)
	assert.Equal(t, "x", o.SID)
	assert.Equal(t, 45*time.Second, o.Liveness())

	_, err = parseOpen([]byte(`{}`))
	assert.Error(t, err)
	_, err = parseOpen([]byte(`nope`))
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	name, args, err := parseEvent([]byte(`["mediapipe_data",[{"x":1,"y":2,"z":3}],"extra"]`))
	require.NoError(t, err)
	assert.Equal(t, "mediapipe_data", name)
	require.Len(t, args, 2)
	assert.JSONEq(t, `[{"x":1,"y":2,"z":3}]`, string(args[0]))

	for _, bad := range []string{`[]`, `{}`, `[1]`} {
		_, _, err := parseEvent([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestConnectError(t *testing.T) {
	assert.EqualError(t, connectError([]byte(`{"message":"not allowed"}`)), "connect refused: not allowed")
	assert.EqualError(t, connectError([]byte(`"x"`)), `connect refused: "\"x\""`)
}

func TestDecodeBatch(t *testing.T) {
	raw := `[
		{"x":0.5,"y":0.5,"z":0},
		{"x":"bad","y":0,"z":0},
		{"x":1,"y":0},
		null,
		7,
		{"x":1,"y":0,"z":1,"visibility":0.9}
	]`
	pts, skipped, err := DecodeBatch([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	want := []cloud.Point3D{cloud.P(0, 0.5, 0.5, 0), cloud.P(1, 1, 0, 1)}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Fatalf("points (-want +got):\n%s", diff)
	}
}

func TestDecodeBatchEmpty(t *testing.T) {
	pts, skipped, err := DecodeBatch([]byte(`[]`))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, pts)
	assert.NotNil(t, pts)
}

func TestDecodeBatchNotArray(t *testing.T) {
	for _, raw := range []string{`{"x":1}`, `null`, `"points"`, `[`} {
		_, _, err := DecodeBatch([]byte(raw))
		assert.ErrorIs(t, err, ErrNotArray, raw)
	}
}

func TestNextBackoff(t *testing.T) {
	lo, hi := 100*time.Millisecond, time.Second
	var got []time.Duration
	w := time.Duration(0)
	for i := 0; i < 6; i++ {
		w = nextBackoff(w, lo, hi)
		got = append(got, w)
	}
	want := []time.Duration{
		100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond,
		800 * time.Millisecond, time.Second, time.Second,
	}
	assert.Equal(t, want, got)
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, DefaultURL, c.URL)
	assert.Equal(t, DefaultEvent, c.Event)
	assert.Equal(t, defaultReconnectMin, c.ReconnectMin)
	assert.Equal(t, defaultReconnectMax, c.ReconnectMax)

	c = Config{ReconnectMin: time.Minute, ReconnectMax: time.Second}.withDefaults()
	assert.Equal(t, time.Minute, c.ReconnectMax)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "disconnected", Disconnected.String())
}
