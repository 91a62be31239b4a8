package frameproto

import (
	"encoding/json"

	"github.com/okhi/okcollect/internal/domain"
)

// Bootstrap message kinds consumed by the frame on startup.
const (
	BootstrapStartApp       = "start_app"
	BootstrapSelectLocation = "select_location"
)

// Bootstrap is the outbound envelope injected into the frame as global state
// before its bundle executes.
type Bootstrap struct {
	Message string       `json:"message"`
	Payload StartPayload `json:"payload"`
	URL     string       `json:"url"`
}

// StartPayload is the structured session state the frame consumes. It is
// built fresh per session and never mutated after hand-off.
type StartPayload struct {
	Style    *Style           `json:"style,omitempty"`
	User     domain.User      `json:"user"`
	Auth     Auth             `json:"auth"`
	Context  Context          `json:"context"`
	Config   Config           `json:"config"`
	Location *PayloadLocation `json:"location,omitempty"`
}

// Style carries host-app branding applied inside the frame.
type Style struct {
	Base *BaseStyle `json:"base,omitempty"`
}

// BaseStyle is the frame's base color/logo theme.
type BaseStyle struct {
	Color string `json:"color,omitempty"`
	Logo  string `json:"logo,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Auth carries the short-lived bearer token for this session.
type Auth struct {
	AuthToken string `json:"authToken"`
}

// Context describes the app, library, and device environment the session
// runs in.
type Context struct {
	Container   domain.AppMeta      `json:"container"`
	Developer   string              `json:"developer,omitempty"`
	Library     Library             `json:"library"`
	Platform    PlatformInfo        `json:"platform"`
	Permissions *Permissions        `json:"permissions,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Geofences   json.RawMessage     `json:"geofences,omitempty"`
}

// Library identifies this SDK to the frame.
type Library struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PlatformInfo is the device/OS identity block.
type PlatformInfo struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	OSVersion    string `json:"osVersion,omitempty"`
}

// Permissions is the current permission and accuracy snapshot. Location is
// omitted entirely when the platform queries needed to derive it failed.
type Permissions struct {
	Location string `json:"location,omitempty"`
	Accuracy string `json:"accuracyLevel,omitempty"`
}

// Config is the feature-toggle block.
type Config struct {
	StreetView            bool         `json:"streetView"`
	AppBar                *AppBar      `json:"appBar,omitempty"`
	AddressTypes          AddressTypes `json:"addressTypes"`
	ProtectedApps         *bool        `json:"protectedApps,omitempty"`
	PermissionsOnboarding bool         `json:"permissionsOnboarding"`
	UsageTypes            []string     `json:"usageTypes"`
}

// AppBar controls the frame's top bar.
type AppBar struct {
	Visible *bool  `json:"visible,omitempty"`
	Color   string `json:"color,omitempty"`
}

// AddressTypes toggles which address categories the frame offers.
type AddressTypes struct {
	Home bool `json:"home"`
	Work bool `json:"work"`
}

// PayloadLocation references an existing address when resuming a session.
type PayloadLocation struct {
	ID string `json:"id"`
}
