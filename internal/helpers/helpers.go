// Package helpers exposes the standalone device-capability checks host
// applications run before or outside a collection session.
package helpers

import (
	"context"

	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/platform"
)

// IsLocationServicesEnabled reports whether device location services are on.
func IsLocationServicesEnabled(ctx context.Context, b platform.Bridge) (bool, error) {
	enabled, err := b.LocationServicesEnabled(ctx)
	if err != nil {
		return false, domain.WrapError(domain.CodeUnknown, "query location services", err)
	}
	return enabled, nil
}

// RequestEnableLocationServices prompts the user to turn location services
// on. A prompt that completes without the services coming up reads as
// service unavailable.
func RequestEnableLocationServices(ctx context.Context, b platform.Bridge) error {
	enabled, err := b.RequestEnableLocationServices(ctx)
	if err != nil {
		return domain.WrapError(domain.CodeServiceUnavailable, "enable location services", err)
	}
	if !enabled {
		return domain.NewError(domain.CodeServiceUnavailable, "location services are not enabled")
	}
	return nil
}

// IsLocationPermissionGranted reports whether foreground location access is
// held.
func IsLocationPermissionGranted(ctx context.Context, b platform.Bridge) (bool, error) {
	granted, err := b.LocationPermissionGranted(ctx)
	if err != nil {
		return false, domain.WrapError(domain.CodeUnknown, "query location permission", err)
	}
	return granted, nil
}

// IsBackgroundLocationPermissionGranted reports whether background location
// access is held.
func IsBackgroundLocationPermissionGranted(ctx context.Context, b platform.Bridge) (bool, error) {
	granted, err := b.BackgroundLocationPermissionGranted(ctx)
	if err != nil {
		return false, domain.WrapError(domain.CodeUnknown, "query background location permission", err)
	}
	return granted, nil
}

// IsGooglePlayServicesAvailable reports Play Services availability. The
// check only exists on Android.
func IsGooglePlayServicesAvailable(ctx context.Context, b platform.Bridge, p domain.Platform) (bool, error) {
	if p != domain.PlatformAndroid {
		return false, domain.ErrUnsupportedPlatform()
	}
	available, err := b.PlayServicesAvailable(ctx)
	if err != nil {
		return false, domain.WrapError(domain.CodeUnknown, "query play services", err)
	}
	return available, nil
}

// RequestEnableGooglePlayServices prompts the user to install or enable Play
// Services. The prompt only exists on Android.
func RequestEnableGooglePlayServices(ctx context.Context, b platform.Bridge, p domain.Platform) error {
	if p != domain.PlatformAndroid {
		return domain.ErrUnsupportedPlatform()
	}
	if err := b.RequestPlayServices(ctx); err != nil {
		return domain.WrapError(domain.CodeServiceUnavailable, "enable play services", err)
	}
	available, err := b.PlayServicesAvailable(ctx)
	if err != nil {
		return domain.WrapError(domain.CodeUnknown, "query play services", err)
	}
	if !available {
		return domain.NewError(domain.CodeServiceUnavailable, "google play services are not available")
	}
	return nil
}
