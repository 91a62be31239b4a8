package android

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhi/okcollect/internal/platform"
	"github.com/okhi/okcollect/internal/platform/bridgetest"
)

func newAdapter(b *bridgetest.Bridge) *Adapter {
	return New(b, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnapshotDerivesPermissionLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		fine       bool
		background bool
		want       string
	}{
		{"background wins", true, true, platform.PermissionAlways},
		{"background without fine still always", false, true, platform.PermissionAlways},
		{"fine only", true, false, platform.PermissionWhenInUse},
		{"nothing granted", false, false, platform.PermissionDenied},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := bridgetest.New()
			b.FineGranted = tc.fine
			b.BackgroundGranted = tc.background
			snap, err := newAdapter(b).Snapshot(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, snap.Permission)
		})
	}
}

func TestSnapshotOmitsPermissionWhenAnyQueryFails(t *testing.T) {
	t.Parallel()

	for _, method := range []string{"LocationPermissionGranted", "BackgroundLocationPermissionGranted"} {
		b := bridgetest.New()
		b.FineGranted = true
		b.Errs[method] = errors.New("bridge down")
		snap, err := newAdapter(b).Snapshot(context.Background())
		require.NoError(t, err, "a failed %s query must not abort the build", method)
		assert.Empty(t, snap.Permission)
	}
}

func TestSnapshotCollectsAccuracyAndGeofences(t *testing.T) {
	t.Parallel()

	b := bridgetest.New()
	b.Accuracy = "precise"
	b.GeofencesJSON = `[{"id":"gf_1","lat":1.2,"lon":3.4}]`
	snap, err := newAdapter(b).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "precise", snap.Accuracy)
	assert.JSONEq(t, b.GeofencesJSON, string(snap.Geofences))
}

func TestSnapshotToleratesAccuracyAndGeofenceFailures(t *testing.T) {
	t.Parallel()

	b := bridgetest.New()
	b.Errs["LocationAccuracyLevel"] = errors.New("no provider")
	b.Errs["Geofences"] = errors.New("store unavailable")
	snap, err := newAdapter(b).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Accuracy)
	assert.Nil(t, snap.Geofences)
}

func TestSnapshotDropsMalformedGeofences(t *testing.T) {
	t.Parallel()

	b := bridgetest.New()
	b.GeofencesJSON = `{"truncated":`
	snap, err := newAdapter(b).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Geofences)
}

func TestRequestPermissionWhenInUse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name              string
		grantOnRequest    bool
		backgroundAlready bool
		want              string
	}{
		{"request granted", true, false, platform.PermissionWhenInUse},
		{"background already granted", true, true, platform.PermissionAlways},
		{"request refused", false, false, platform.PermissionBlocked},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := bridgetest.New()
			b.GrantOnRequest = tc.grantOnRequest
			b.BackgroundGranted = tc.backgroundAlready
			reply, hasReply, err := newAdapter(b).RequestPermission(context.Background(), platform.PermissionWhenInUse)
			require.NoError(t, err)
			require.True(t, hasReply)
			assert.Equal(t, tc.want, reply)
		})
	}
}

func TestRequestPermissionAlways(t *testing.T) {
	t.Parallel()

	b := bridgetest.New()
	b.GrantBackgroundOnRequest = true
	reply, hasReply, err := newAdapter(b).RequestPermission(context.Background(), platform.PermissionAlways)
	require.NoError(t, err)
	require.True(t, hasReply)
	assert.Equal(t, platform.PermissionAlways, reply)

	refused := bridgetest.New()
	reply, hasReply, err = newAdapter(refused).RequestPermission(context.Background(), platform.PermissionAlways)
	require.NoError(t, err)
	require.True(t, hasReply)
	assert.Equal(t, platform.PermissionBlocked, reply)
}

func TestRequestPermissionPropagatesBridgeErrors(t *testing.T) {
	t.Parallel()

	b := bridgetest.New()
	b.Errs["RequestLocationPermission"] = errors.New("dialog dismissed by os")
	_, _, err := newAdapter(b).RequestPermission(context.Background(), platform.PermissionWhenInUse)
	require.Error(t, err)

	_, _, err = newAdapter(bridgetest.New()).RequestPermission(context.Background(), "sometimes")
	require.Error(t, err)
}

func TestProtectedApps(t *testing.T) {
	t.Parallel()

	b := bridgetest.New()
	b.ProtectedApps = true
	got := newAdapter(b).ProtectedApps(context.Background())
	require.NotNil(t, got)
	assert.True(t, *got)

	failing := bridgetest.New()
	failing.Errs["CanOpenProtectedApps"] = errors.New("no vendor settings")
	got = newAdapter(failing).ProtectedApps(context.Background())
	require.NotNil(t, got)
	assert.False(t, *got)
}
