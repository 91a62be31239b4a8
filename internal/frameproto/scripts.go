package frameproto

import (
	"encoding/json"
	"fmt"
)

// BootstrapScript renders the script that seeds the frame with its start
// payload. The surface runs it before the frame bundle executes, so the
// bundle finds its state already in place.
func BootstrapScript(b Bootstrap) (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode bootstrap: %w", err)
	}
	return fmt.Sprintf("window.startPayload = %s; true;", data), nil
}

// PermissionCallbackScript renders the permission reply handed back to the
// frame. The frame expects a bare status token, one of [ReplyAlways],
// [ReplyWhenInUse], [ReplyBlocked], or [ReplyDenied].
func PermissionCallbackScript(token string) string {
	return fmt.Sprintf("runOkHiLocationManagerCallback('%s'); true;", token)
}

// HistoryBackScript forwards hardware/gesture back navigation into the
// frame's own history instead of closing the host surface.
func HistoryBackScript() string {
	return "window.history.back(); true;"
}
