package frameproto

import (
	"strings"
	"testing"
)

func TestParseLocationCreated(t *testing.T) {
	t.Parallel()

	raw := `{
	  "message": "location_created",
	  "payload": {
	    "user": {"phone": "+254712345678", "first_name": "Jane", "id": "user_1"},
	    "location": {
	      "id": "loc1",
	      "geo_point": {"lat": 1.0, "lon": 2.0},
	      "place_id": "pl_9",
	      "plus_code": "6GCRPR6C+24",
	      "property_name": "Green Apartments",
	      "street_view": {"pano_id": "pano_1", "url": "https://example.com/pano"},
	      "usage_types": ["digital", "physical"]
	    }
	  }
	}`
	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindLocationCreated {
		t.Fatalf("expected kind %q, got %q", KindLocationCreated, msg.Kind)
	}
	if msg.Result == nil {
		t.Fatal("expected location result")
	}
	loc := msg.Result.Location
	if loc.ID != "loc1" {
		t.Fatalf("expected id loc1, got %q", loc.ID)
	}
	if loc.Lat == nil || *loc.Lat != 1.0 {
		t.Fatalf("expected lat 1.0, got %v", loc.Lat)
	}
	if loc.Lon == nil || *loc.Lon != 2.0 {
		t.Fatalf("expected lon 2.0, got %v", loc.Lon)
	}
	if loc.StreetViewPanoID != "pano_1" {
		t.Fatalf("expected pano id mapped, got %q", loc.StreetViewPanoID)
	}
	if len(loc.UsageTypes) != 2 || loc.UsageTypes[0] != "digital" {
		t.Fatalf("unexpected usage types %v", loc.UsageTypes)
	}
	if msg.Result.User.Phone != "+254712345678" || msg.Result.User.FirstName != "Jane" {
		t.Fatalf("unexpected user %+v", msg.Result.User)
	}
}

func TestParsePermissionRequest(t *testing.T) {
	t.Parallel()

	msg, err := Parse([]byte(`{"message":"request_location_permission","payload":{"level":"whenInUse"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Permission == nil || msg.Permission.Level != "whenInUse" {
		t.Fatalf("unexpected permission request %+v", msg.Permission)
	}

	if _, err := Parse([]byte(`{"message":"request_location_permission","payload":{"level":"forever"}}`)); err == nil {
		t.Fatal("expected unknown permission level to be rejected")
	}
	if _, err := Parse([]byte(`{"message":"request_location_permission"}`)); err == nil {
		t.Fatal("expected missing payload to be rejected")
	}
}

func TestParseFatalExit(t *testing.T) {
	t.Parallel()

	msg, err := Parse([]byte(`{"message":"fatal_exit","payload":"frame crashed"}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.FatalError != "frame crashed" {
		t.Fatalf("expected fatal message, got %q", msg.FatalError)
	}

	if _, err := Parse([]byte(`{"message":"fatal_exit","payload":{"reason":"x"}}`)); err == nil {
		t.Fatal("expected non-string fatal payload to be rejected")
	}
}

func TestParseSimpleKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{KindExitApp, KindOpenAppSettings, KindRequestEnableProtectedApps} {
		msg, err := Parse([]byte(`{"message":"` + kind + `"}`))
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if msg.Kind != kind {
			t.Fatalf("expected %q, got %q", kind, msg.Kind)
		}
	}
}

func TestParseRejectsUnknownAndMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"unknown tag", `{"message":"reboot_device"}`},
		{"missing tag", `{"payload":{}}`},
		{"not an object", `"exit_app"`},
		{"truncated json", `{"message":"exit_app"`},
		{"location without payload", `{"message":"location_created"}`},
		{"location payload missing user", `{"message":"location_updated","payload":{"location":{}}}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Fatalf("expected parse failure for %s", tc.raw)
			}
		})
	}
}

func TestNormalizeLocationIsTotal(t *testing.T) {
	t.Parallel()

	cases := []map[string]any{
		nil,
		{},
		{"id": 42, "geo_point": "not an object", "usage_types": "digital"},
		{"geo_point": map[string]any{"lat": "1.0"}, "street_view": []any{"x"}},
		{"usage_types": []any{"digital", 7, nil, "physical"}},
	}
	for _, raw := range cases {
		loc := NormalizeLocation(raw)
		if loc.ID != "" && raw["id"] != "loc" {
			t.Fatalf("non-string id should normalize to empty, got %q", loc.ID)
		}
		if loc.Lat != nil && raw["geo_point"] == "not an object" {
			t.Fatal("lat should be nil when geo_point is malformed")
		}
	}

	loc := NormalizeLocation(map[string]any{"usage_types": []any{"digital", 7, nil, "physical"}})
	if len(loc.UsageTypes) != 2 {
		t.Fatalf("expected non-string usage types filtered, got %v", loc.UsageTypes)
	}
}

func TestBootstrapScript(t *testing.T) {
	t.Parallel()

	b := Bootstrap{
		Message: BootstrapStartApp,
		Payload: StartPayload{Auth: Auth{AuthToken: "tok"}},
		URL:     "https://sandbox-manager.okhi.io",
	}
	script, err := BootstrapScript(b)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(script, "window.startPayload = {") {
		t.Fatalf("unexpected script prefix: %q", script)
	}
	if !strings.Contains(script, `"message":"start_app"`) {
		t.Fatalf("expected bootstrap message in script: %q", script)
	}
	if !strings.Contains(script, `"authToken":"tok"`) {
		t.Fatalf("expected auth token in script: %q", script)
	}
}

func TestPermissionCallbackScript(t *testing.T) {
	t.Parallel()

	got := PermissionCallbackScript(ReplyWhenInUse)
	if got != "runOkHiLocationManagerCallback('whenInUse'); true;" {
		t.Fatalf("unexpected script %q", got)
	}
}
