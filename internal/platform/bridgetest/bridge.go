// Package bridgetest provides a configurable in-memory [platform.Bridge]
// for tests. Method failures are injected per method name and every call is
// recorded.
package bridgetest

import (
	"context"
	"errors"
	"sync"

	"github.com/okhi/okcollect/internal/domain"
)

// Bridge is a fake native bridge. The zero value denies everything; flip the
// exported fields to shape the scenario under test.
type Bridge struct {
	mu sync.Mutex

	ServicesEnabled          bool
	FineGranted              bool
	BackgroundGranted        bool
	GrantOnRequest           bool
	GrantBackgroundOnRequest bool

	Status string
	Coords *domain.Coordinates

	Accuracy      string
	GeofencesJSON string
	Device        domain.DeviceInfo
	OSVersion     string

	ProtectedApps bool
	PlayServices  bool

	Items map[string]string

	// Errs maps method names to injected failures.
	Errs map[string]error

	calls []string
}

// New returns a fake bridge with an empty item store.
func New() *Bridge {
	return &Bridge{Items: map[string]string{}, Errs: map[string]error{}}
}

// Calls returns the method names invoked so far, in order.
func (b *Bridge) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// Called reports whether the named method was invoked.
func (b *Bridge) Called(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (b *Bridge) record(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, name)
	return b.Errs[name]
}

func (b *Bridge) LocationServicesEnabled(ctx context.Context) (bool, error) {
	if err := b.record("LocationServicesEnabled"); err != nil {
		return false, err
	}
	return b.ServicesEnabled, nil
}

func (b *Bridge) LocationPermissionGranted(ctx context.Context) (bool, error) {
	if err := b.record("LocationPermissionGranted"); err != nil {
		return false, err
	}
	return b.FineGranted, nil
}

func (b *Bridge) BackgroundLocationPermissionGranted(ctx context.Context) (bool, error) {
	if err := b.record("BackgroundLocationPermissionGranted"); err != nil {
		return false, err
	}
	return b.BackgroundGranted, nil
}

func (b *Bridge) RequestLocationPermission(ctx context.Context) (bool, error) {
	if err := b.record("RequestLocationPermission"); err != nil {
		return false, err
	}
	if b.GrantOnRequest {
		b.FineGranted = true
	}
	return b.FineGranted, nil
}

func (b *Bridge) RequestBackgroundLocationPermission(ctx context.Context) (bool, error) {
	if err := b.record("RequestBackgroundLocationPermission"); err != nil {
		return false, err
	}
	if b.GrantBackgroundOnRequest {
		b.BackgroundGranted = true
	}
	return b.BackgroundGranted, nil
}

func (b *Bridge) RequestEnableLocationServices(ctx context.Context) (bool, error) {
	if err := b.record("RequestEnableLocationServices"); err != nil {
		return false, err
	}
	return b.ServicesEnabled, nil
}

func (b *Bridge) OpenAppSettings(ctx context.Context) error {
	return b.record("OpenAppSettings")
}

func (b *Bridge) SystemVersion(ctx context.Context) (string, error) {
	if err := b.record("SystemVersion"); err != nil {
		return "", err
	}
	return b.OSVersion, nil
}

func (b *Bridge) DeviceInfo(ctx context.Context) (domain.DeviceInfo, error) {
	if err := b.record("DeviceInfo"); err != nil {
		return domain.DeviceInfo{}, err
	}
	return b.Device, nil
}

func (b *Bridge) PermissionStatus(ctx context.Context) (string, error) {
	if err := b.record("PermissionStatus"); err != nil {
		return "", err
	}
	return b.Status, nil
}

func (b *Bridge) CurrentCoordinates(ctx context.Context) (domain.Coordinates, error) {
	if err := b.record("CurrentCoordinates"); err != nil {
		return domain.Coordinates{}, err
	}
	if b.Coords == nil {
		return domain.Coordinates{}, errors.New("no fix available")
	}
	return *b.Coords, nil
}

func (b *Bridge) PlayServicesAvailable(ctx context.Context) (bool, error) {
	if err := b.record("PlayServicesAvailable"); err != nil {
		return false, err
	}
	return b.PlayServices, nil
}

func (b *Bridge) RequestPlayServices(ctx context.Context) error {
	return b.record("RequestPlayServices")
}

func (b *Bridge) CanOpenProtectedApps(ctx context.Context) (bool, error) {
	if err := b.record("CanOpenProtectedApps"); err != nil {
		return false, err
	}
	return b.ProtectedApps, nil
}

func (b *Bridge) OpenProtectedApps(ctx context.Context) error {
	return b.record("OpenProtectedApps")
}

func (b *Bridge) Geofences(ctx context.Context) (string, error) {
	if err := b.record("Geofences"); err != nil {
		return "", err
	}
	return b.GeofencesJSON, nil
}

func (b *Bridge) LocationAccuracyLevel(ctx context.Context) (string, error) {
	if err := b.record("LocationAccuracyLevel"); err != nil {
		return "", err
	}
	return b.Accuracy, nil
}

func (b *Bridge) SetItem(ctx context.Context, key, value string) error {
	if err := b.record("SetItem"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Items[key] = value
	return nil
}

func (b *Bridge) GetItem(ctx context.Context, key string) (string, error) {
	if err := b.record("GetItem"); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Items[key], nil
}
