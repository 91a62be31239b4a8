// Package payload assembles the start payload the hosted frame consumes at
// the beginning of an address-collection session.
package payload

import (
	"context"

	"github.com/okhi/okcollect/internal/config"
	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/frameproto"
	"github.com/okhi/okcollect/internal/platform"
)

// Library identity reported to the frame.
const (
	LibraryName    = "okcollect-go"
	LibraryVersion = "1.2.0"
)

// Theme carries host-app branding applied inside the frame.
type Theme struct {
	Color string
	Logo  string
	Name  string
}

// Config holds caller feature toggles. Nil pointers take the documented
// defaults: street view on, home and work address types on, permission
// onboarding on, usage type digital_verification.
type Config struct {
	StreetView            *bool
	AppBarColor           string
	AppBarVisible         *bool
	AddressTypeHome       *bool
	AddressTypeWork       *bool
	PermissionsOnboarding *bool
	UsageTypes            []string
}

// Props are the caller-supplied inputs to a payload build.
type Props struct {
	User       domain.User
	Theme      *Theme
	Config     *Config
	LocationID string
}

// Build assembles a start payload by combining caller props with the device
// state reported by the platform adapter. A new payload is built per
// session; the result is never mutated after being handed to the surface.
func Build(ctx context.Context, adapter platform.Adapter, props Props, token string, app config.App) (frameproto.StartPayload, error) {
	if adapter == nil {
		return frameproto.StartPayload{}, domain.ErrUnsupportedPlatform()
	}

	device, err := adapter.Device(ctx)
	if err != nil {
		return frameproto.StartPayload{}, domain.WrapError(domain.CodeUnknown, "query device info", err)
	}
	snap, err := adapter.Snapshot(ctx)
	if err != nil {
		return frameproto.StartPayload{}, domain.WrapError(domain.CodeUnknown, "query device state", err)
	}

	out := frameproto.StartPayload{
		User: props.User,
		Auth: frameproto.Auth{AuthToken: token},
		Context: frameproto.Context{
			Container: app.App,
			Developer: app.DevTag,
			Library:   frameproto.Library{Name: LibraryName, Version: LibraryVersion},
			Platform: frameproto.PlatformInfo{
				Name:         string(adapter.Platform()),
				Manufacturer: device.Manufacturer,
				Model:        device.Model,
				OSVersion:    device.OSVersion,
			},
			Coordinates: snap.Coordinates,
			Geofences:   snap.Geofences,
		},
		Config: buildConfig(ctx, adapter, props.Config),
	}
	if snap.Permission != "" || snap.Accuracy != "" {
		out.Context.Permissions = &frameproto.Permissions{
			Location: snap.Permission,
			Accuracy: snap.Accuracy,
		}
	}
	if props.Theme != nil {
		out.Style = &frameproto.Style{Base: &frameproto.BaseStyle{
			Color: props.Theme.Color,
			Logo:  props.Theme.Logo,
			Name:  props.Theme.Name,
		}}
	}
	if props.LocationID != "" {
		out.Location = &frameproto.PayloadLocation{ID: props.LocationID}
	}
	return out, nil
}

func buildConfig(ctx context.Context, adapter platform.Adapter, c *Config) frameproto.Config {
	if c == nil {
		c = &Config{}
	}
	out := frameproto.Config{
		StreetView: boolOr(c.StreetView, true),
		AddressTypes: frameproto.AddressTypes{
			Home: boolOr(c.AddressTypeHome, true),
			Work: boolOr(c.AddressTypeWork, true),
		},
		ProtectedApps:         adapter.ProtectedApps(ctx),
		PermissionsOnboarding: boolOr(c.PermissionsOnboarding, true),
		UsageTypes:            c.UsageTypes,
	}
	if len(out.UsageTypes) == 0 {
		out.UsageTypes = []string{"digital_verification"}
	}
	if c.AppBarColor != "" || c.AppBarVisible != nil {
		out.AppBar = &frameproto.AppBar{
			Visible: c.AppBarVisible,
			Color:   c.AppBarColor,
		}
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
