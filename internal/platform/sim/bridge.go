// Package sim implements a simulated native bridge for the okcollect
// developer CLI and integration tests. Key-value items and registered
// geofences persist in a SQLite database so repeated sessions against the
// same database behave like an app reinstall-free device.
package sim

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/okhi/okcollect/internal/domain"
)

// Options shapes the simulated device.
type Options struct {
	Platform domain.Platform
	Device   domain.DeviceInfo

	LocationServices  bool
	FineGranted       bool
	BackgroundGranted bool
	// GrantOnRequest makes permission request dialogs succeed, mimicking a
	// user that taps allow.
	GrantOnRequest bool

	PermissionStatus string
	Coordinates      *domain.Coordinates
	Accuracy         string
	ProtectedApps    bool
	PlayServices     bool
}

// Bridge is a simulated native bridge backed by SQLite.
type Bridge struct {
	mu   sync.Mutex
	opts Options
	db   *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS geofences (
	id   TEXT PRIMARY KEY,
	data TEXT NOT NULL
);
`

// Open creates or opens the simulated device database at path.
func Open(path string, opts Options) (*Bridge, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite setup: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &Bridge{opts: opts, db: db}, nil
}

// Close closes the underlying database.
func (b *Bridge) Close() error {
	return b.db.Close()
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (b *Bridge) LocationServicesEnabled(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.LocationServices, nil
}

func (b *Bridge) LocationPermissionGranted(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.FineGranted, nil
}

func (b *Bridge) BackgroundLocationPermissionGranted(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.BackgroundGranted, nil
}

func (b *Bridge) RequestLocationPermission(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opts.GrantOnRequest {
		b.opts.FineGranted = true
	}
	return b.opts.FineGranted, nil
}

func (b *Bridge) RequestBackgroundLocationPermission(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opts.GrantOnRequest {
		b.opts.BackgroundGranted = true
	}
	return b.opts.BackgroundGranted, nil
}

func (b *Bridge) RequestEnableLocationServices(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opts.GrantOnRequest {
		b.opts.LocationServices = true
	}
	return b.opts.LocationServices, nil
}

func (b *Bridge) OpenAppSettings(ctx context.Context) error {
	// The simulated settings screen grants whatever the scenario allows.
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opts.GrantOnRequest {
		b.opts.LocationServices = true
		b.opts.BackgroundGranted = true
	}
	return nil
}

func (b *Bridge) SystemVersion(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.Device.OSVersion, nil
}

func (b *Bridge) DeviceInfo(ctx context.Context) (domain.DeviceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.Device, nil
}

func (b *Bridge) PermissionStatus(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opts.PermissionStatus != "" {
		return b.opts.PermissionStatus, nil
	}
	switch {
	case b.opts.BackgroundGranted:
		return "authorizedAlways", nil
	case b.opts.FineGranted:
		return "authorizedWhenInUse", nil
	default:
		return "notDetermined", nil
	}
}

func (b *Bridge) CurrentCoordinates(ctx context.Context) (domain.Coordinates, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opts.Coordinates == nil {
		return domain.Coordinates{}, errors.New("no location fix available")
	}
	return *b.opts.Coordinates, nil
}

func (b *Bridge) PlayServicesAvailable(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.PlayServices, nil
}

func (b *Bridge) RequestPlayServices(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opts.PlayServices {
		return errors.New("play services unavailable on simulated device")
	}
	return nil
}

func (b *Bridge) CanOpenProtectedApps(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.ProtectedApps, nil
}

func (b *Bridge) OpenProtectedApps(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opts.ProtectedApps {
		return errors.New("protected apps unavailable on simulated device")
	}
	return nil
}

func (b *Bridge) LocationAccuracyLevel(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.Accuracy, nil
}

// Geofences returns all registered geofences as a JSON array string, the
// same shape the Android SDK stores.
func (b *Bridge) Geofences(ctx context.Context) (string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT data FROM geofences ORDER BY id`)
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()

	var fences []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return "", err
		}
		fences = append(fences, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(fences) == 0 {
		return "", nil
	}
	out, err := json.Marshal(fences)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// AddGeofence registers a geofence record under the given id.
func (b *Bridge) AddGeofence(ctx context.Context, id string, data string) error {
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("geofence %s: data is not valid JSON", id)
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO geofences (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`, id, data)
	return err
}

func (b *Bridge) SetItem(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO items (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (b *Bridge) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM items WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
