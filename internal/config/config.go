// Package config holds the okcollect application configuration: static API
// credentials, operating mode, and the service endpoints derived from them.
package config

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"github.com/okhi/okcollect/internal/domain"
)

// Mode selects which OkHi environment the SDK talks to.
type Mode string

const (
	ModeSandbox Mode = "sandbox"
	ModeProd    Mode = "prod"
	ModeDev     Mode = "dev"
)

// App is the per-application configuration. It is set once at startup by the
// host application and read-only afterwards; the auth provider and payload
// builder both receive it by value.
type App struct {
	BranchID  string
	ClientKey string
	Mode      Mode
	App       domain.AppMeta
	DevTag    string
}

// Validate reports whether the configuration carries usable credentials.
func (a App) Validate() error {
	if strings.TrimSpace(a.BranchID) == "" {
		return errors.New("missing branch id")
	}
	if strings.TrimSpace(a.ClientKey) == "" {
		return errors.New("missing client key")
	}
	return nil
}

// AccessToken returns the static application credential sent as the
// Authorization header on sign-in calls. This is distinct from the per-user
// bearer token the sign-in call returns.
func (a App) AccessToken() string {
	raw := a.BranchID + ":" + a.ClientKey
	return "Token " + base64.StdEncoding.EncodeToString([]byte(raw))
}

const (
	devAuthBaseURL     = "https://dev-api.okhi.io"
	sandboxAuthBaseURL = "https://sandbox-api.okhi.io"
	prodAuthBaseURL    = "https://api.okhi.io"
)

// AuthBaseURL returns the sign-in service base URL for a mode. Unrecognized
// modes fall back to sandbox.
func AuthBaseURL(m Mode) string {
	switch m {
	case ModeProd:
		return prodAuthBaseURL
	case ModeDev:
		return devAuthBaseURL
	default:
		return sandboxAuthBaseURL
	}
}

const (
	frameURLProd    = "https://manager.okhi.io"
	frameURLDev     = "https://dev-manager.okhi.io"
	frameURLSandbox = "https://sandbox-manager.okhi.io"

	legacyFrameURLProd    = "https://legacy-manager.okhi.io"
	legacyFrameURLDev     = "https://dev-legacy-manager.okhi.io"
	legacyFrameURLSandbox = "https://sandbox-legacy-manager.okhi.io"
)

// Android builds older than this cannot run the current frame bundle and are
// served the legacy frame instead.
// TODO: drop the legacy URLs once the minimum supported Android version is
// raised to 7.0 (API 24).
const minModernAndroidVersion = 24

// FrameURL returns the hosted frame URL to load for the given platform, OS
// major version, and mode. The function is pure: same inputs always select
// the same one of the six fixed URLs.
func FrameURL(p domain.Platform, osMajor int, m Mode) string {
	legacy := p == domain.PlatformAndroid && osMajor > 0 && osMajor < minModernAndroidVersion
	switch m {
	case ModeProd:
		if legacy {
			return legacyFrameURLProd
		}
		return frameURLProd
	case ModeDev:
		if legacy {
			return legacyFrameURLDev
		}
		return frameURLDev
	default:
		if legacy {
			return legacyFrameURLSandbox
		}
		return frameURLSandbox
	}
}

// OSMajorVersion extracts the leading numeric component of an OS version
// string such as "13" or "16.4.1". Unparseable versions return 0, which
// [FrameURL] treats as a modern build.
func OSMajorVersion(v string) int {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ".-"); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
