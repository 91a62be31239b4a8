// Package domain defines the core data types shared across the okcollect
// auth, payload, and frame protocol layers.
package domain

// Platform identifies the host operating system the SDK runs on.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Access scopes limit what an authorization token may be used for.
const (
	ScopeVerify   = "verify"
	ScopeAddress  = "address"
	ScopeCheckout = "checkout"
	ScopeProfile  = "profile"
)

// User identifies the person an address is collected for. Phone is the only
// required field and must be MSISDN formatted; the sign-in service rejects
// anything else.
type User struct {
	Phone                    string `json:"phone"`
	FirstName                string `json:"firstName,omitempty"`
	LastName                 string `json:"lastName,omitempty"`
	Email                    string `json:"email,omitempty"`
	ID                       string `json:"id,omitempty"`
	AppUserID                string `json:"appUserId,omitempty"`
	FCMPushNotificationToken string `json:"fcmPushNotificationToken,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DeviceInfo describes the host device as reported by the native bridge.
type DeviceInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Platform     string `json:"platform,omitempty"`
	OSVersion    string `json:"osVersion,omitempty"`
}

// AppMeta is optional metadata about the host application.
type AppMeta struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Build   string `json:"build,omitempty"`
}

// Location is the normalized address record produced from the frame's raw
// location object. Lat and Lon are pointers so an absent coordinate stays
// distinguishable from zero.
type Location struct {
	ID                string   `json:"id,omitempty"`
	Lat               *float64 `json:"lat,omitempty"`
	Lon               *float64 `json:"lon,omitempty"`
	PlaceID           string   `json:"placeId,omitempty"`
	PlusCode          string   `json:"plusCode,omitempty"`
	PropertyName      string   `json:"propertyName,omitempty"`
	PropertyNumber    string   `json:"propertyNumber,omitempty"`
	StreetName        string   `json:"streetName,omitempty"`
	Title             string   `json:"title,omitempty"`
	Subtitle          string   `json:"subtitle,omitempty"`
	Directions        string   `json:"directions,omitempty"`
	OtherInformation  string   `json:"otherInformation,omitempty"`
	URL               string   `json:"url,omitempty"`
	StreetViewPanoID  string   `json:"streetViewPanoId,omitempty"`
	StreetViewPanoURL string   `json:"streetViewPanoUrl,omitempty"`
	UserID            string   `json:"userId,omitempty"`
	PhotoURL          string   `json:"photo,omitempty"`
	Country           string   `json:"country,omitempty"`
	State             string   `json:"state,omitempty"`
	City              string   `json:"city,omitempty"`
	DisplayTitle      string   `json:"displayTitle,omitempty"`
	UsageTypes        []string `json:"usageTypes,omitempty"`
}
