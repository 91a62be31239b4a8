// Package frameproto defines the JSON wire protocol exchanged between the
// okcollect host and the hosted address-collection frame, in both
// directions: inbound protocol messages from the frame and the outbound
// bootstrap plus script snippets injected into it.
package frameproto

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okhi/okcollect/internal/domain"
)

// Message kinds the frame may send. Only the three location kinds, exit_app,
// and fatal_exit end a session; the rest trigger a sub-flow and keep it open.
const (
	KindLocationCreated            = "location_created"
	KindLocationSelected           = "location_selected"
	KindLocationUpdated            = "location_updated"
	KindExitApp                    = "exit_app"
	KindRequestEnableProtectedApps = "request_enable_protected_apps"
	KindFatalExit                  = "fatal_exit"
	KindRequestLocationPermission  = "request_location_permission"
	KindOpenAppSettings            = "open_app_settings"
)

// Permission status tokens the frame expects as replies. These are sent back
// as bare strings through [PermissionCallbackScript], not as JSON.
const (
	ReplyAlways    = "always"
	ReplyWhenInUse = "whenInUse"
	ReplyBlocked   = "blocked"
	ReplyDenied    = "denied"
)

// Message is a parsed inbound frame message. Exactly one variant field is
// populated depending on Kind.
type Message struct {
	Kind       string
	Result     *LocationResult
	Permission *PermissionRequest
	FatalError string
}

// LocationResult carries the user and normalized location of a
// location_created, location_selected, or location_updated message.
type LocationResult struct {
	User     domain.User
	Location domain.Location
}

// PermissionRequest asks the host to negotiate a location permission level.
type PermissionRequest struct {
	Level string
}

// messageSchema constrains the inbound envelope before any payload is
// touched. The frame side of this channel is not under our control, so
// anything that fails validation is rejected at the boundary instead of
// surfacing as a partially decoded struct deeper in the controller.
const messageSchema = `{
  "type": "object",
  "required": ["message"],
  "properties": {
    "message": {
      "enum": [
        "location_created",
        "location_selected",
        "location_updated",
        "exit_app",
        "request_enable_protected_apps",
        "fatal_exit",
        "request_location_permission",
        "open_app_settings"
      ]
    }
  },
  "allOf": [
    {
      "if": {
        "properties": {"message": {"const": "request_location_permission"}},
        "required": ["message"]
      },
      "then": {
        "required": ["payload"],
        "properties": {
          "payload": {
            "type": "object",
            "required": ["level"],
            "properties": {"level": {"enum": ["whenInUse", "always"]}}
          }
        }
      }
    },
    {
      "if": {
        "properties": {"message": {"const": "fatal_exit"}},
        "required": ["message"]
      },
      "then": {
        "required": ["payload"],
        "properties": {"payload": {"type": "string"}}
      }
    },
    {
      "if": {
        "properties": {
          "message": {
            "enum": ["location_created", "location_selected", "location_updated"]
          }
        },
        "required": ["message"]
      },
      "then": {
        "required": ["payload"],
        "properties": {
          "payload": {
            "type": "object",
            "required": ["user", "location"],
            "properties": {
              "user": {"type": "object"},
              "location": {"type": "object"}
            }
          }
        }
      }
    }
  ]
}`

var compiledMessageSchema = jsonschema.MustCompileString("frameproto/message.schema.json", messageSchema)

// Parse validates and decodes an inbound frame message. Any payload that
// does not match a known kind is rejected; callers surface such failures as
// unknown errors without closing the session.
func Parse(data []byte) (Message, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Message{}, fmt.Errorf("decode frame message: %w", err)
	}
	if err := compiledMessageSchema.Validate(v); err != nil {
		return Message{}, fmt.Errorf("invalid frame message: %w", err)
	}

	env := v.(map[string]any)
	kind := env["message"].(string)
	msg := Message{Kind: kind}
	switch kind {
	case KindLocationCreated, KindLocationSelected, KindLocationUpdated:
		payload, _ := env["payload"].(map[string]any)
		user, _ := payload["user"].(map[string]any)
		location, _ := payload["location"].(map[string]any)
		msg.Result = &LocationResult{
			User:     NormalizeUser(user),
			Location: NormalizeLocation(location),
		}
	case KindFatalExit:
		msg.FatalError, _ = env["payload"].(string)
	case KindRequestLocationPermission:
		payload, _ := env["payload"].(map[string]any)
		level, _ := payload["level"].(string)
		msg.Permission = &PermissionRequest{Level: level}
	}
	return msg, nil
}
