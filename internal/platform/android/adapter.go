// Package android interprets the raw native bridge the way the Android SDK
// does: foreground and background permission are independent grants, and
// protected-apps settings exist on some vendors.
package android

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/platform"
)

// Adapter is the Android view over a raw [platform.Bridge].
type Adapter struct {
	bridge platform.Bridge
	log    *slog.Logger
}

// New creates an Android adapter.
func New(bridge platform.Bridge, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{bridge: bridge, log: logger}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformAndroid
}

func (a *Adapter) Device(ctx context.Context) (domain.DeviceInfo, error) {
	return a.bridge.DeviceInfo(ctx)
}

// Snapshot captures the current permission, accuracy, and geofence state.
// Each query is independently fallible: a failed query is logged and its
// field omitted, never aborting the whole payload build. The combined
// permission level is only derived when both permission queries succeeded.
func (a *Adapter) Snapshot(ctx context.Context) (platform.Snapshot, error) {
	var snap platform.Snapshot

	granted, grantedErr := a.bridge.LocationPermissionGranted(ctx)
	if grantedErr != nil {
		a.log.Warn("location permission query failed", "err", grantedErr)
	}
	background, backgroundErr := a.bridge.BackgroundLocationPermissionGranted(ctx)
	if backgroundErr != nil {
		a.log.Warn("background permission query failed", "err", backgroundErr)
	}
	if grantedErr == nil && backgroundErr == nil {
		switch {
		case background:
			snap.Permission = platform.PermissionAlways
		case granted:
			snap.Permission = platform.PermissionWhenInUse
		default:
			snap.Permission = platform.PermissionDenied
		}
	}

	if accuracy, err := a.bridge.LocationAccuracyLevel(ctx); err != nil {
		a.log.Warn("accuracy level query failed", "err", err)
	} else {
		snap.Accuracy = accuracy
	}

	if geofences, err := a.bridge.Geofences(ctx); err != nil {
		a.log.Warn("geofence query failed", "err", err)
	} else {
		snap.Geofences = platform.ParseGeofences(geofences)
	}

	return snap, nil
}

// RequestPermission negotiates a permission level:
//   - whenInUse: request the foreground permission, then reply always if
//     background is already granted, whenInUse if the request succeeded, and
//     blocked otherwise.
//   - always: request the background permission directly and reply always or
//     blocked.
func (a *Adapter) RequestPermission(ctx context.Context, level string) (string, bool, error) {
	switch level {
	case platform.PermissionWhenInUse:
		granted, err := a.bridge.RequestLocationPermission(ctx)
		if err != nil {
			return "", false, err
		}
		background, err := a.bridge.BackgroundLocationPermissionGranted(ctx)
		if err != nil {
			return "", false, err
		}
		switch {
		case background:
			return platform.PermissionAlways, true, nil
		case granted:
			return platform.PermissionWhenInUse, true, nil
		default:
			return platform.PermissionBlocked, true, nil
		}
	case platform.PermissionAlways:
		granted, err := a.bridge.RequestBackgroundLocationPermission(ctx)
		if err != nil {
			return "", false, err
		}
		if granted {
			return platform.PermissionAlways, true, nil
		}
		return platform.PermissionBlocked, true, nil
	default:
		return "", false, fmt.Errorf("unknown permission level %q", level)
	}
}

func (a *Adapter) BackgroundGranted(ctx context.Context) (bool, error) {
	return a.bridge.BackgroundLocationPermissionGranted(ctx)
}

func (a *Adapter) OpenSettings(ctx context.Context) error {
	return a.bridge.OpenAppSettings(ctx)
}

// ProtectedApps queries whether vendor protected-apps settings can be
// opened. A failed query reads as unavailable.
func (a *Adapter) ProtectedApps(ctx context.Context) *bool {
	available, err := a.bridge.CanOpenProtectedApps(ctx)
	if err != nil {
		a.log.Warn("protected apps query failed", "err", err)
		available = false
	}
	return &available
}

func (a *Adapter) OpenProtectedApps(ctx context.Context) error {
	return a.bridge.OpenProtectedApps(ctx)
}
