// Package ios interprets the raw native bridge the way the iOS SDK does: a
// single authorization status string drives everything, and permission
// escalation beyond whenInUse happens in the Settings app, not in-process.
package ios

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/platform"
)

// Native authorization status strings reported by the bridge.
const (
	statusNotDetermined       = "notDetermined"
	statusAuthorizedWhenInUse = "authorizedWhenInUse"
	statusAuthorizedAlways    = "authorizedAlways"
)

// Adapter is the iOS view over a raw [platform.Bridge].
type Adapter struct {
	bridge platform.Bridge
	log    *slog.Logger
}

// New creates an iOS adapter.
func New(bridge platform.Bridge, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{bridge: bridge, log: logger}
}

func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformIOS
}

func (a *Adapter) Device(ctx context.Context) (domain.DeviceInfo, error) {
	return a.bridge.DeviceInfo(ctx)
}

// Snapshot maps the native authorization status onto a permission level and,
// when the user has authorized location access, attaches the current
// coordinates. A failed coordinate fetch is logged and omitted so the
// payload build still completes.
func (a *Adapter) Snapshot(ctx context.Context) (platform.Snapshot, error) {
	status, err := a.bridge.PermissionStatus(ctx)
	if err != nil {
		return platform.Snapshot{}, fmt.Errorf("permission status: %w", err)
	}

	var snap platform.Snapshot
	switch status {
	case statusNotDetermined:
		snap.Permission = platform.PermissionNotDetermined
	case statusAuthorizedWhenInUse:
		snap.Permission = platform.PermissionWhenInUse
	case statusAuthorizedAlways:
		snap.Permission = platform.PermissionAlways
	default:
		snap.Permission = platform.PermissionDenied
	}

	if snap.Permission == platform.PermissionWhenInUse || snap.Permission == platform.PermissionAlways {
		if coords, err := a.bridge.CurrentCoordinates(ctx); err != nil {
			a.log.Warn("coordinate fetch failed", "err", err)
		} else {
			snap.Coordinates = &coords
		}
	}

	return snap, nil
}

// RequestPermission negotiates a permission level:
//   - whenInUse: if location services are off at the OS level, hand off to
//     the Settings app with no reply; otherwise request and reply the
//     granted level or denied.
//   - always: reply always if background is already granted, otherwise hand
//     off to the Settings app with no reply.
func (a *Adapter) RequestPermission(ctx context.Context, level string) (string, bool, error) {
	switch level {
	case platform.PermissionWhenInUse:
		enabled, err := a.bridge.LocationServicesEnabled(ctx)
		if err != nil {
			return "", false, err
		}
		if !enabled {
			return "", false, a.bridge.OpenAppSettings(ctx)
		}
		if _, err := a.bridge.RequestLocationPermission(ctx); err != nil {
			return "", false, err
		}
		status, err := a.bridge.PermissionStatus(ctx)
		if err != nil {
			return "", false, err
		}
		switch status {
		case statusAuthorizedAlways:
			return platform.PermissionAlways, true, nil
		case statusAuthorizedWhenInUse:
			return platform.PermissionWhenInUse, true, nil
		default:
			return platform.PermissionDenied, true, nil
		}
	case platform.PermissionAlways:
		background, err := a.bridge.BackgroundLocationPermissionGranted(ctx)
		if err != nil {
			return "", false, err
		}
		if background {
			return platform.PermissionAlways, true, nil
		}
		return "", false, a.bridge.OpenAppSettings(ctx)
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

// ProtectedApps returns nil: iOS has no protected-apps concept and the
// payload omits the toggle entirely.
func (a *Adapter) ProtectedApps(ctx context.Context) *bool {
	return nil
}

func (a *Adapter) OpenProtectedApps(ctx context.Context) error {
	return fmt.Errorf("protected apps are not available on ios")
}
