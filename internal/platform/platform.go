// Package platform defines the boundary between okcollect and the native
// location/permission capabilities of the host OS. The raw capability set is
// [Bridge]; everything platform-specific about interpreting those
// capabilities lives behind [Adapter], so the payload builder and the
// session controller never compare platform names.
package platform

import (
	"context"
	"encoding/json"

	"github.com/okhi/okcollect/internal/domain"
)

// Permission levels used both in payload snapshots and in permission
// negotiation requests from the frame.
const (
	PermissionAlways        = "always"
	PermissionWhenInUse     = "whenInUse"
	PermissionDenied        = "denied"
	PermissionBlocked       = "blocked"
	PermissionNotDetermined = "notDetermined"
)

// Bridge is the raw native capability set, one method per native call. All
// methods are context-aware because every native call crosses an
// asynchronous bridge on a real device.
type Bridge interface {
	LocationServicesEnabled(ctx context.Context) (bool, error)
	LocationPermissionGranted(ctx context.Context) (bool, error)
	BackgroundLocationPermissionGranted(ctx context.Context) (bool, error)
	RequestLocationPermission(ctx context.Context) (bool, error)
	RequestBackgroundLocationPermission(ctx context.Context) (bool, error)
	RequestEnableLocationServices(ctx context.Context) (bool, error)
	OpenAppSettings(ctx context.Context) error
	SystemVersion(ctx context.Context) (string, error)
	DeviceInfo(ctx context.Context) (domain.DeviceInfo, error)

	// iOS-only capabilities.
	PermissionStatus(ctx context.Context) (string, error)
	CurrentCoordinates(ctx context.Context) (domain.Coordinates, error)

	// Android-only capabilities.
	PlayServicesAvailable(ctx context.Context) (bool, error)
	RequestPlayServices(ctx context.Context) error
	CanOpenProtectedApps(ctx context.Context) (bool, error)
	OpenProtectedApps(ctx context.Context) error
	Geofences(ctx context.Context) (string, error)
	LocationAccuracyLevel(ctx context.Context) (string, error)
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, error)
}

// Snapshot is the device permission/location state captured while building a
// start payload. Zero-valued fields are omitted from the payload rather than
// failing the build.
type Snapshot struct {
	Permission  string
	Accuracy    string
	Coordinates *domain.Coordinates
	Geofences   json.RawMessage
}

// Adapter is the platform-specific view consumed by the payload builder and
// the session controller.
type Adapter interface {
	Platform() domain.Platform
	Device(ctx context.Context) (domain.DeviceInfo, error)
	Snapshot(ctx context.Context) (Snapshot, error)

	// RequestPermission negotiates the requested level with the OS. The
	// returned bool reports whether a reply token should be sent back to
	// the frame; settings hand-off branches produce no reply.
	RequestPermission(ctx context.Context, level string) (string, bool, error)

	BackgroundGranted(ctx context.Context) (bool, error)
	OpenSettings(ctx context.Context) error

	// ProtectedApps reports whether the OS can open protected-apps
	// settings, or nil when the platform has no such concept.
	ProtectedApps(ctx context.Context) *bool
	OpenProtectedApps(ctx context.Context) error
}

// ParseGeofences turns the bridge's stored geofence JSON string into a raw
// message suitable for payload embedding. Empty or malformed input reads the
// same as no geofences at all.
func ParseGeofences(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
